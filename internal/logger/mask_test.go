package logger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskURL_HidesLongPath(t *testing.T) {
	raw := "https://bot.example.com/webhook/123456789:AAHsecretTokenValue"
	got := MaskURL(raw)

	assert.True(t, strings.HasPrefix(got, "https://bot.example.com/webhook/1234567"))
	assert.True(t, strings.HasSuffix(got, masked))
	assert.NotContains(t, got, "secretTokenValue")
}

func TestMaskURL_ShortPathMasked(t *testing.T) {
	assert.Equal(t, "https://bot.example.com/webhook"+masked, MaskURL("https://bot.example.com/webhook"))
	assert.Equal(t, "https://bot.example.com/webhook/a"+masked, MaskURL("https://bot.example.com/webhook/abcdefgh"))
	assert.Equal(t, "https://bot.example.com"+masked, MaskURL("https://bot.example.com"))
	assert.Equal(t, "", MaskURL(""))
}

func TestMaskURL_Unparseable(t *testing.T) {
	got := MaskURL("not a url at all, really")
	assert.Equal(t, "not a url "+masked, got)
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "ab******yz", MaskSecret("abcdefghyz"))
	assert.Equal(t, "****", MaskSecret("abcd"))
}
