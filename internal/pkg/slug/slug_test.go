package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	cases := map[string]string{
		"Yeni Şantiye":            "yeni-santiye",
		"City Park":               "city-park",
		"Çelik Konstrüksiyon":     "celik-konstruksiyon",
		"İç Mimarlık & Dekor":     "ic-mimarlik-dekor",
		"  --- Boş   Alanlar ---": "bos-alanlar",
		"ığüşöç":                  "igusoc",
		"123 Sayılı Proje":        "123-sayili-proje",
		"":                        "",
		"!!!":                     "",
		"already-a-slug":          "already-a-slug",
	}
	for in, want := range cases {
		assert.Equal(t, want, Make(in), "input %q", in)
	}
}

func TestMakeIdempotent(t *testing.T) {
	inputs := []string{
		"Yeni Şantiye",
		"A  B\tC\nD",
		"Üsküdar Köprü İnşaatı 2024",
		"ŞŞŞ---ğğğ",
		"emoji 🚧 in title",
	}
	for _, in := range inputs {
		once := Make(in)
		assert.Equal(t, once, Make(once), "input %q", in)
	}
}

func TestMakeTotal(t *testing.T) {
	// arbitrary byte soup must not panic and must produce a valid slug
	inputs := []string{"\x00\xff\xfe", string(rune(0xD800)), "�"}
	for _, in := range inputs {
		out := Make(in)
		for _, r := range out {
			ok := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-'
			assert.True(t, ok, "rune %q in output %q", r, out)
		}
	}
}
