package knowledge

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestProductName(t *testing.T) {
	e := Entry{
		SourceName: "Katalog",
		Content:    "Mahsulot: Quloqchin\nNarxi: 100000 som",
	}
	if got := e.ProductName(); got != "Quloqchin" {
		t.Errorf("ProductName = %q, want Quloqchin", got)
	}

	// Without a product line the source name stands in.
	e.Content = "Narxi: 100000 som"
	if got := e.ProductName(); got != "Katalog" {
		t.Errorf("ProductName = %q, want Katalog", got)
	}
}

func TestComposeFencesProductsAndDescribesImages(t *testing.T) {
	entries := []Entry{
		{Kind: KindText, Content: "Do'kon har kuni 9 dan 18 gacha ishlaydi."},
		{Kind: KindProduct, Content: "Mahsulot: Telefon\nNarxi: 3000000"},
		{Kind: KindImage, SourceName: "Vitrina"},
	}
	got := Compose(entries, 0)

	if !strings.Contains(got, "=== MAHSULOT MA'LUMOTI ===\nMahsulot: Telefon") {
		t.Errorf("product fence missing:\n%s", got)
	}
	if !strings.Contains(got, "Rasm: Vitrina") {
		t.Errorf("image description missing:\n%s", got)
	}
	if !strings.HasPrefix(got, "Do'kon har kuni") {
		t.Errorf("plain text entry must lead:\n%s", got)
	}
}

func TestComposeBudgetKeepsRunesWhole(t *testing.T) {
	// Every byte of the content is part of a 2-byte rune, so an arbitrary
	// byte cap is guaranteed to land mid-rune without the boundary backoff.
	entries := []Entry{{Kind: KindText, Content: strings.Repeat("ж", 50)}}
	got := Compose(entries, 31)

	if len(got) > 31 {
		t.Fatalf("composed %d bytes, budget is 31", len(got))
	}
	if !utf8.ValidString(got) {
		t.Fatalf("composed text is not valid UTF-8: %q", got)
	}
	if got != strings.Repeat("ж", 15) {
		t.Fatalf("got %q, want 15 whole runes", got)
	}
}

func TestComposeZeroBudgetIsUncapped(t *testing.T) {
	entries := []Entry{{Kind: KindText, Content: strings.Repeat("a", 5000)}}
	if got := Compose(entries, 0); len(got) != 5000 {
		t.Fatalf("composed %d bytes, want all 5000", len(got))
	}
}
