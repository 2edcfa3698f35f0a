package langfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/mclang/internal/domain"
)

func TestDecode_PreservesSourceOrder(t *testing.T) {
	t.Parallel()

	src := `{"z.last": "Z", "a.first": "A", "m.middle": "M"}`
	m, err := Decode([]byte(src))
	require.NoError(t, err)

	assert.Equal(t, []string{"z.last", "a.first", "m.middle"}, m.Keys())
}

func TestDecode_UnescapesValues(t *testing.T) {
	t.Parallel()

	src := `{"block.minecraft.stone": "石头", "key": "line\nbreak \"quoted\""}`
	m, err := Decode([]byte(src))
	require.NoError(t, err)

	v, ok := m.Get("block.minecraft.stone")
	require.True(t, ok)
	assert.Equal(t, "石头", v)

	v, ok = m.Get("key")
	require.True(t, ok)
	assert.Equal(t, "line\nbreak \"quoted\"", v)
}

func TestDecode_SurrogatePairs(t *testing.T) {
	t.Parallel()

	src := `{"a": "\ud83d\ude00", "b": "\\ud800", "c": "\u00e9\u4e2d"}`
	m, err := Decode([]byte(src))
	require.NoError(t, err)

	assert.Equal(t, []domain.Entry{
		{Key: "a", Value: "😀"},
		{Key: "b", Value: `\ud800`},
		{Key: "c", Value: "é中"},
	}, m.Entries())
}

func TestDecode_DuplicateKeyLastValueFirstPosition(t *testing.T) {
	t.Parallel()

	m, err := Decode([]byte(`{"a": "1", "b": "2", "a": "3"}`))
	require.NoError(t, err)

	assert.Equal(t, []domain.Entry{{Key: "a", Value: "3"}, {Key: "b", Value: "2"}}, m.Entries())
}

func TestDecode_StripsBOM(t *testing.T) {
	t.Parallel()

	m, err := Decode(append([]byte{0xEF, 0xBB, 0xBF}, `{"a": "b"}`...))
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())
}

func TestDecode_Empty(t *testing.T) {
	t.Parallel()

	m, err := Decode([]byte(" {} \n"))
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())
}

func TestDecode_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		src     string
		wantKey string
	}{
		{name: "invalid syntax", src: `{"a": "b",}`},
		{name: "truncated", src: `{"a": "b"`},
		{name: "empty input", src: ``},
		{name: "top-level array", src: `["a", "b"]`},
		{name: "top-level string", src: `"a"`},
		{name: "nested object", src: `{"a": "b", "c": {"d": "e"}}`, wantKey: "c"},
		{name: "array value", src: `{"a": ["b"]}`, wantKey: "a"},
		{name: "number value", src: `{"a": 1}`, wantKey: "a"},
		{name: "boolean value", src: `{"a": true}`, wantKey: "a"},
		{name: "null value", src: `{"a": null}`, wantKey: "a"},
		{name: "invalid utf-8", src: "{\"a\": \"\xff\"}"},
		{name: "lone high surrogate", src: `{"a": "\ud800x"}`, wantKey: "a"},
		{name: "lone low surrogate", src: `{"ok": "1", "b": "\udc00"}`, wantKey: "b"},
		{name: "high surrogate at end", src: `{"c": "x\ud83d"}`, wantKey: "c"},
		{name: "reversed pair", src: `{"d": "\ude00\ud83d"}`, wantKey: "d"},
		{name: "surrogate in key", src: `{"\ud800": "x"}`, wantKey: "\ufffd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode([]byte(tt.src))
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrMalformedSource))

			var me *domain.MalformedError
			require.True(t, errors.As(err, &me))
			assert.Equal(t, tt.wantKey, me.Key)
		})
	}
}

func TestEncode_Layout(t *testing.T) {
	t.Parallel()

	m := domain.MappingOf(
		domain.Entry{Key: "block.minecraft.stone", Value: "石头"},
		domain.Entry{Key: "gui.html", Value: `<b> & "q" / \`},
		domain.Entry{Key: "ctl", Value: "a\tb\nc\x01"},
	)

	want := "{\n" +
		"  \"block.minecraft.stone\": \"石头\",\n" +
		"  \"gui.html\": \"<b> & \\\"q\\\" / \\\\\",\n" +
		"  \"ctl\": \"a\\tb\\nc\\u0001\"\n" +
		"}\n"

	assert.Equal(t, want, string(Encode(m)))
}

func TestEncode_Empty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "{}\n", string(Encode(domain.NewMapping(0))))
	assert.Equal(t, "{}\n", string(Encode(nil)))
}

func TestEncode_Deterministic(t *testing.T) {
	t.Parallel()

	m := domain.MappingOf(
		domain.Entry{Key: "item.minecraft.apple", Value: "Táo"},
		domain.Entry{Key: "item.minecraft.bread", Value: "Bánh mì"},
	)
	first := Encode(m)
	for range 5 {
		assert.Equal(t, first, Encode(m))
	}
}

func TestEncodeDecode_RoundTripKeepsValues(t *testing.T) {
	t.Parallel()

	m := domain.MappingOf(
		domain.Entry{Key: "a", Value: "Ünïcödé ✓ 🧱"},
		domain.Entry{Key: "b", Value: "tab\tquote\"backslash\\"},
		domain.Entry{Key: "c", Value: "  separators  "},
	)

	back, err := Decode(Encode(m))
	require.NoError(t, err)
	assert.Equal(t, m.Entries(), back.Entries())
}

func TestReadFile_Missing(t *testing.T) {
	t.Parallel()

	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingSource))
}

func TestWriteFile_AtomicAndReadable(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "valid")
	path := filepath.Join(dir, "en_us.json")
	m := domain.MappingOf(domain.Entry{Key: "block.minecraft.stone", Value: "Stone"})

	require.NoError(t, WriteFile(path, m))

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, m.Entries(), got.Entries())

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}
