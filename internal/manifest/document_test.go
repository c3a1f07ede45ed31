package manifest

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/jakoblorz/create-devhub/internal/filesystem"
)

const starterManifest = `{
  "name": "my-turbo-app",
  "private": true,
  "type": "module",
  "scripts": {
    "build": "turbo run build",
    "dev": "turbo run dev"
  },
  "devDependencies": {
    "@repo/typescript-config": "*",
    "turbo": "^2.5.0"
  },
  "packageManager": "pnpm@9.0.0"
}
`

func TestPath_EscapesScopedNames(t *testing.T) {
	doc, err := Parse([]byte(starterManifest))
	require.NoError(t, err)

	p := Path("devDependencies", "@repo/typescript-config")
	require.Equal(t, "*", doc.Get(p).String())

	require.NoError(t, doc.Set(p, "workspace:*"))
	require.Equal(t, "workspace:*", doc.Get(p).String())
	require.Equal(t, "^2.5.0", doc.Get(Path("devDependencies", "turbo")).String())
}

func TestSet_PreservesKeyOrder(t *testing.T) {
	doc, err := Parse([]byte(starterManifest))
	require.NoError(t, err)

	require.NoError(t, doc.Set(Path("scripts", "dev"), "turbo run dev --parallel"))
	require.NoError(t, doc.Set(Path("engines", "node"), ">=18"))

	var keys []string
	gjson.ParseBytes(doc.Bytes()).ForEach(func(key, _ gjson.Result) bool {
		keys = append(keys, key.String())
		return true
	})
	require.Equal(t, []string{"name", "private", "type", "scripts", "devDependencies", "packageManager", "engines"}, keys)
}

func TestDelete(t *testing.T) {
	doc, err := Parse([]byte(starterManifest))
	require.NoError(t, err)

	require.NoError(t, doc.Delete("type"))
	require.False(t, doc.Has("type"))
	require.NoError(t, doc.Delete("type"))
	require.True(t, doc.Has("name"))
}

func TestAppendUnique(t *testing.T) {
	doc, err := Parse([]byte(`{"workspaces":["apps/*"]}`))
	require.NoError(t, err)

	changed, err := doc.AppendUnique("workspaces", "apps/*", "packages/*")
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = doc.AppendUnique("workspaces", "apps/*", "packages/*")
	require.NoError(t, err)
	require.False(t, changed)

	var got []string
	for _, v := range doc.Get("workspaces").Array() {
		got = append(got, v.String())
	}
	require.Equal(t, []string{"apps/*", "packages/*"}, got)
}

func TestAppendUnique_CreatesMissingArray(t *testing.T) {
	doc, err := Parse([]byte(`{"name":"root"}`))
	require.NoError(t, err)

	changed, err := doc.AppendUnique("workspaces", "apps/*", "packages/*")
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, `["apps/*","packages/*"]`, doc.Get("workspaces").Raw)
}

func TestAppendUnique_LeavesObjectFormAlone(t *testing.T) {
	doc, err := Parse([]byte(`{"workspaces":{"packages":["apps/*"]}}`))
	require.NoError(t, err)

	changed, err := doc.AppendUnique("workspaces", "packages/*")
	require.NoError(t, err)
	require.False(t, changed)
	require.Equal(t, `{"packages":["apps/*"]}`, doc.Get("workspaces").Raw)
}

func TestParse_RejectsInvalid(t *testing.T) {
	_, err := Parse([]byte(`{"name":`))
	require.Error(t, err)

	_, err = Parse([]byte(`["not","an","object"]`))
	require.Error(t, err)
}

func TestObject_MarshalsInOrder(t *testing.T) {
	doc, err := Parse([]byte(`{"name":"@repo/typescript-config"}`))
	require.NoError(t, err)

	exports := Object{
		{Key: "./nextjs.json", Value: "./nextjs.json"},
		{Key: "./base.json", Value: "./base.json"},
	}
	require.NoError(t, doc.Set("exports", exports))
	require.Equal(t, []string{"./nextjs.json", "./base.json"}, exports.Keys())
	require.Equal(t, `{"./nextjs.json":"./nextjs.json","./base.json":"./base.json"}`, doc.Get("exports").Raw)
	require.Equal(t, "./base.json", doc.Get(Path("exports", "./base.json")).String())
}

func TestBytes_FormatsWithTwoSpaces(t *testing.T) {
	doc, err := Parse([]byte(`{"name":"web","files":["a.json","b.json"],"tasks":{}}`))
	require.NoError(t, err)

	want := "{\n" +
		"  \"name\": \"web\",\n" +
		"  \"files\": [\n" +
		"    \"a.json\",\n" +
		"    \"b.json\"\n" +
		"  ],\n" +
		"  \"tasks\": {}\n" +
		"}\n"
	require.Equal(t, want, string(doc.Bytes()))
}

func TestUpdate(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/workspace/package.json", []byte(starterManifest))

	found, err := Update(fs, "/workspace/package.json", func(doc *Document) error {
		if err := doc.Delete("type"); err != nil {
			return err
		}
		_, err := doc.AppendUnique("workspaces", "apps/*", "packages/*")
		return err
	})
	require.NoError(t, err)
	require.True(t, found)

	data, err := fs.ReadFile("/workspace/package.json")
	require.NoError(t, err)
	snaps.MatchSnapshot(t, string(data))
}

func TestUpdate_MissingFileIsNoop(t *testing.T) {
	fs := filesystem.NewMockFileSystem()

	called := false
	found, err := Update(fs, "/workspace/turbo.json", func(*Document) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	require.False(t, found)
	require.False(t, called)
	require.False(t, fs.Exists("/workspace/turbo.json"))
}
