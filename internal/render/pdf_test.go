package render

import (
	"strings"
	"testing"
)

func TestBuildHTMLRendersMarkdownTable(t *testing.T) {
	md := "# Laporan\n\n| Pemberi Tugas | Kemiripan |\n|---|---|\n| PT Lama | 85% |\n"
	html, err := buildHTML(md, "Laporan Analisis Konflik")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"<title>Laporan Analisis Konflik</title>",
		"<h1", "Laporan",
		"<table>", "<td>PT Lama</td>",
		reportCSS,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("html missing %q", want)
		}
	}
}

func TestBuildHTMLEmptyInput(t *testing.T) {
	html, err := buildHTML("", "t")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(html, "<body>") {
		t.Fatalf("html = %q", html)
	}
}

func TestDetectChromePathPrefersEnv(t *testing.T) {
	t.Setenv("CHROME_PATH", "/opt/chromium/chrome")
	if got := detectChromePath(); got != "/opt/chromium/chrome" {
		t.Fatalf("path = %q", got)
	}
}
