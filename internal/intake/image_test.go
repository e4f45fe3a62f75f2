package intake

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testimonials/testimonials/internal/testutil"
)

func TestValidate_AcceptsAllowedTypes(t *testing.T) {
	c := ImageConstraints(0)
	cases := []struct {
		ct   string
		data []byte
		ext  string
	}{
		{"image/png", testutil.PNG(t), ".png"},
		{"image/jpeg", testutil.JPEG(t), ".jpg"},
		{"image/jpg", testutil.JPEG(t), ".jpg"},
		{"image/gif", testutil.GIF(t), ".gif"},
	}
	for _, tc := range cases {
		t.Run(tc.ct, func(t *testing.T) {
			fh := testutil.FileHeader(t, testutil.File{Filename: "a", ContentType: tc.ct, Data: tc.data})
			img, err := c.Validate(fh)
			require.NoError(t, err)
			require.Equal(t, tc.ext, img.Ext)
			require.Equal(t, int64(len(tc.data)), img.Size())
		})
	}
}

func TestValidate_SizeBoundary(t *testing.T) {
	const limit = 4096
	c := ImageConstraints(limit)

	atLimit := testutil.PadTo(t, testutil.PNG(t), limit)
	_, err := c.Validate(testutil.FileHeader(t, testutil.File{Filename: "a.png", ContentType: "image/png", Data: atLimit}))
	require.NoError(t, err)

	over := testutil.PadTo(t, testutil.PNG(t), limit+1)
	_, err = c.Validate(testutil.FileHeader(t, testutil.File{Filename: "a.png", ContentType: "image/png", Data: over}))
	require.Error(t, err)
	require.True(t, IsValidation(err))
	require.Contains(t, err.Error(), "4KB")
}

func TestValidate_DefaultLimitMessage(t *testing.T) {
	c := ImageConstraints(0)
	require.Equal(t, DefaultMaxImageBytes, c.MaxSize)

	over := testutil.PadTo(t, testutil.PNG(t), int(DefaultMaxImageBytes)+1)
	_, err := c.Validate(testutil.FileHeader(t, testutil.File{Filename: "a.png", ContentType: "image/png", Data: over}))
	require.Error(t, err)
	require.Contains(t, err.Error(), "File size exceeds the 5MB limit")
}

func TestValidate_RejectsDeclaredType(t *testing.T) {
	c := ImageConstraints(0)
	for _, ct := range []string{"application/pdf", "text/plain", "image/webp", ""} {
		fh := testutil.FileHeader(t, testutil.File{Filename: "a", ContentType: ct, Data: testutil.PNG(t)})
		_, err := c.Validate(fh)
		require.Error(t, err, ct)
		require.True(t, IsValidation(err))
		require.True(t, strings.HasPrefix(err.Error(), "Only images are allowed"))
	}
}

func TestValidate_TypeCheckedBeforeSize(t *testing.T) {
	c := ImageConstraints(16)
	fh := testutil.FileHeader(t, testutil.File{Filename: "a.pdf", ContentType: "application/pdf", Data: make([]byte, 64)})
	_, err := c.Validate(fh)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Only images are allowed")
}

func TestValidate_RejectsSpoofedContent(t *testing.T) {
	c := ImageConstraints(0)
	fh := testutil.FileHeader(t, testutil.File{
		Filename:    "evil.png",
		ContentType: "image/png",
		Data:        []byte("<html><script>alert(1)</script></html>"),
	})
	_, err := c.Validate(fh)
	require.Error(t, err)
	require.True(t, IsValidation(err))
	require.Contains(t, err.Error(), "not an allowed image")
}

func TestValidate_RejectsEmpty(t *testing.T) {
	c := ImageConstraints(0)
	fh := testutil.FileHeader(t, testutil.File{Filename: "a.png", ContentType: "image/png", Data: nil})
	_, err := c.Validate(fh)
	require.Error(t, err)
	require.True(t, IsValidation(err))
}

func TestNewObjectName_Unique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		name := NewObjectName(".png")
		require.True(t, strings.HasSuffix(name, ".png"))
		require.Len(t, name, 26+4)
		_, dup := seen[name]
		require.False(t, dup, name)
		seen[name] = struct{}{}
	}
}

func TestHumanBytes(t *testing.T) {
	require.Equal(t, "5MB", humanBytes(5<<20))
	require.Equal(t, "4KB", humanBytes(4096))
	require.Equal(t, "1000 bytes", humanBytes(1000))
}
