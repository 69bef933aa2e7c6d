package apk

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/apk/internal/testutil"
)

func TestIsPrimaryDex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want bool
	}{
		{"classes.dex", true},
		{"classes2.dex", true},
		{"classes10.dex", true},
		{"classes0.dex", true},
		{"classes.DEX", false},
		{"Classes.dex", false},
		{"lib/classes2.dex", false},
		{"foo/classes.dex", false},
		{"classesX.dex", false},
		{"classes2a.dex", false},
		{"classes.dex.bak", false},
		{"xclasses.dex", false},
		{"classes_dex", false},
		{"classesadex", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsPrimaryDex(tt.name))
			if tt.want {
				assert.Equal(t, LabelPrimaryPayload, Classify(tt.name))
			} else {
				assert.Equal(t, LabelOther, Classify(tt.name))
			}
		})
	}
}

func TestDexNames(t *testing.T) {
	t.Parallel()

	names := []string{"classes3.dex", "AndroidManifest.xml", "lib/classes2.dex", "classes.dex", "classes.DEX", "classes2.dex"}
	data := testutil.BuildFiles(t, names, func(name string) []byte { return []byte(name) })
	a, err := Open(data)
	require.NoError(t, err)

	want := []string{"classes3.dex", "classes.dex", "classes2.dex"}
	assert.Equal(t, want, slices.Collect(a.DexNames()))
	// Restartable: a second pass is independent of the first.
	assert.Equal(t, want, slices.Collect(a.DexNames()))

	t.Run("early stop", func(t *testing.T) {
		t.Parallel()
		var got []string
		for name := range a.DexNames() {
			got = append(got, name)
			break
		}
		assert.Equal(t, []string{"classes3.dex"}, got)
	})
}

func TestIsMultiDex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		names []string
		want  bool
	}{
		{"two root dex", []string{"classes.dex", "classes2.dex"}, true},
		{"single dex", []string{"classes.dex", "AndroidManifest.xml"}, false},
		{"no dex", []string{"AndroidManifest.xml"}, false},
		{"nested counts", []string{"classes.dex", "lib/classes2.dex"}, true},
		{"only nested", []string{"a/classes.dex", "b/classes3.dex"}, true},
		{"case differs", []string{"classes.dex", "classes2.DEX"}, false},
		{"prefix is not a directory", []string{"classes.dex", "myclasses2.dex"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			data := testutil.BuildFiles(t, tt.names, func(string) []byte { return []byte("x") })
			a, err := Open(data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, a.IsMultiDex())
		})
	}
}

func TestDex(t *testing.T) {
	t.Parallel()

	t.Run("present", func(t *testing.T) {
		t.Parallel()
		a, err := Open(testutil.BuildAPK(t, sampleEntries()))
		require.NoError(t, err)
		got, err := a.Dex()
		require.NoError(t, err)
		assert.Equal(t, []byte("dex\n035\x00primary"), got)
	})

	t.Run("absent", func(t *testing.T) {
		t.Parallel()
		a, err := Open(testutil.BuildAPK(t, []testutil.TestEntry{
			{Name: "AndroidManifest.xml", Data: []byte("<manifest/>")},
			{Name: "classes2.dex", Data: []byte("second")},
		}))
		require.NoError(t, err)
		got, err := a.Dex()
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestAllDex(t *testing.T) {
	t.Parallel()

	a, stub := openCounting(t, []testutil.TestEntry{
		{Name: "classes.dex", Data: []byte("one"), Method: testutil.MethodDeflate},
		{Name: "classes2.dex", Data: []byte("two"), Method: testutil.MethodDeflate, Body: []byte{0xff}},
		{Name: "assets/classes3.dex", Data: []byte("nested")},
		{Name: "classes3.dex", Data: []byte("three")},
	})

	var files []DexFile
	for f := range a.AllDex() {
		files = append(files, f)
	}
	require.Len(t, files, 3)
	assert.Equal(t, DexFile{Name: "classes.dex", Data: []byte("one")}, files[0])
	assert.Equal(t, "classes2.dex", files[1].Name)
	require.ErrorIs(t, files[1].Err, ErrMalformedEntry)
	assert.Equal(t, DexFile{Name: "classes3.dex", Data: []byte("three")}, files[2])
	assert.Equal(t, 0, stub.ReadCount("assets/classes3.dex"))

	t.Run("lazy", func(t *testing.T) {
		a, stub := openCounting(t, sampleEntries())
		for range a.AllDex() {
			break
		}
		assert.Equal(t, 1, stub.ReadCount("classes.dex"))
		assert.Equal(t, 0, stub.ReadCount("classes2.dex"))
	})
}
