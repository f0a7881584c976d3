package youtube_test

import (
	"testing"

	"github.com/hbomb79/Siphon/internal/youtube"
	"github.com/stretchr/testify/assert"
)

func TestValidateURL_PermittedForms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		summary string
		url     string
	}{
		{"standard watch link", "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		{"watch link without www", "https://youtube.com/watch?v=dQw4w9WgXcQ"},
		{"plain http scheme", "http://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		{"short link", "https://youtu.be/dQw4w9WgXcQ"},
		{"embed link", "https://www.youtube.com/embed/dQw4w9WgXcQ"},
		{"embed link without www", "https://youtube.com/embed/dQw4w9WgXcQ"},
		{"music link", "https://music.youtube.com/watch?v=dQw4w9WgXcQ"},
		{"playlist link", "https://www.youtube.com/playlist?list=PL9tY0BWXOZFt1Kv"},
		{"surrounding whitespace", "  https://youtu.be/dQw4w9WgXcQ\n"},
	}

	for _, test := range tests {
		test := test
		t.Run(test.summary, func(t *testing.T) {
			t.Parallel()

			validated, err := youtube.ValidateURL(test.url)
			assert.Nil(t, err)
			assert.NotEmpty(t, validated.String())
		})
	}
}

func TestValidateURL_RejectedForms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		summary string
		url     string
	}{
		{"empty input", ""},
		{"whitespace only", "   "},
		{"non-youtube host", "https://example.com/watch?v=dQw4w9WgXcQ"},
		{"lookalike host", "https://youtube.com.evil.example/watch?v=dQw4w9WgXcQ"},
		{"hostname embedded in path", "https://evil.example/https://youtube.com/watch?v=x"},
		{"missing scheme", "www.youtube.com/watch?v=dQw4w9WgXcQ"},
		{"ftp scheme", "ftp://youtube.com/watch?v=dQw4w9WgXcQ"},
		{"channel page", "https://www.youtube.com/@SomeChannel"},
		{"bare video id", "dQw4w9WgXcQ"},
	}

	for _, test := range tests {
		test := test
		t.Run(test.summary, func(t *testing.T) {
			t.Parallel()

			validated, err := youtube.ValidateURL(test.url)
			assert.NotNil(t, err)
			assert.Empty(t, validated.String())

			var urlErr *youtube.URLNotPermittedError
			assert.ErrorAs(t, err, &urlErr)
		})
	}
}

func TestValidateURL_ErrorDoesNotEchoFullInput(t *testing.T) {
	t.Parallel()

	secret := "https://example.com/watch?v=dQw4w9WgXcQ&session=supersecrettoken"
	_, err := youtube.ValidateURL(secret)

	assert.NotNil(t, err)
	assert.NotContains(t, err.Error(), "supersecrettoken")
}
