package mdscan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanDocumentExtractsImportsAndCalls(t *testing.T) {
	src := strings.Join([]string{
		"# Client guide",                       // 1
		"",                                     // 2
		"Construct a client and connect.",      // 3
		"",                                     // 4
		"```ts",                                // 5
		`import { Client, retry } from "sdk";`, // 6
		"",                                     // 7
		"const c = new Client({ url: base });", // 8
		"c.connect();",                         // 9
		"```",                                  // 10
		"",
	}, "\n")

	s := ScanDocument(Document{Path: "guide.md", Source: []byte(src)})
	assert.Equal(t, "guide.md", s.Path)
	assert.Equal(t, 1, s.CodeBlocks)
	want := []Reference{
		{Line: 6, Name: "Client"},
		{Line: 6, Name: "retry"},
		{Line: 8, Name: "Client", IsInstantiation: true},
		{Line: 9, Name: "Client", Member: "connect"},
	}
	assert.Equal(t, want, s.References)

	assert.True(t, s.Mentions("Client"))
	assert.True(t, s.Mentions("connect"))
	assert.False(t, s.Mentions("disconnect"))
}

func TestScanDocumentResolvesRequireNamespace(t *testing.T) {
	src := strings.Join([]string{
		"Setup:",                             // 1
		"",                                   // 2
		"```js",                              // 3
		`const sdk = require("widget-sdk");`, // 4
		"const w = sdk.createWidget();",      // 5
		"sdk.Widget.describe();",             // 6
		"```",                                // 7
		"",                                   // 8
		"```bash",                            // 9
		"npm install widget-sdk",             // 10
		"```",                                // 11
		"",
	}, "\n")

	s := ScanDocument(Document{Path: "setup.md", Source: []byte(src)})
	assert.Equal(t, 1, s.CodeBlocks, "bash block must not be scanned")
	want := []Reference{
		{Line: 5, Name: "createWidget"},
		{Line: 6, Name: "Widget"},
	}
	assert.Equal(t, want, s.References)
}

func TestScanDocumentTracksBindingsAcrossBlocks(t *testing.T) {
	src := strings.Join([]string{
		"# Guide",                               // 1
		"",                                      // 2
		"First import the client:",              // 3
		"",                                      // 4
		"```typescript",                         // 5
		`import Api, { Widget as W } from "x";`, // 6
		"```",                                   // 7
		"",                                      // 8
		"Then use it:",                          // 9
		"",                                      // 10
		"```typescript",                         // 11
		"const w = new W();",                    // 12
		"w.render();",                           // 13
		"Api.init();",                           // 14
		"```",                                   // 15
		"",
	}, "\n")

	s := ScanDocument(Document{Path: "guide.md", Source: []byte(src)})
	assert.Equal(t, 2, s.CodeBlocks)
	want := []Reference{
		{Line: 6, Name: "Widget"},
		{Line: 6, Name: "Api"},
		{Line: 12, Name: "Widget", IsInstantiation: true},
		{Line: 13, Name: "Widget", Member: "render"},
		{Line: 14, Name: "Api", Member: "init"},
	}
	assert.Equal(t, want, s.References)
}

func TestScanCodePatterns(t *testing.T) {
	// Each case is the body of a single ```js fence, so the first code
	// line is document line 2.
	type testCase struct {
		name string
		code []string
		want []Reference
	}
	cases := []testCase{
		{
			name: "named imports",
			code: []string{`import { A, B } from 'pkg';`},
			want: []Reference{{Line: 2, Name: "A"}, {Line: 2, Name: "B"}},
		},
		{
			name: "aliased import resolves to exported name",
			code: []string{`import { Widget as W } from 'pkg';`, "new W();"},
			want: []Reference{
				{Line: 2, Name: "Widget"},
				{Line: 3, Name: "Widget", IsInstantiation: true},
			},
		},
		{
			name: "default import",
			code: []string{`import Widget from 'pkg';`},
			want: []Reference{{Line: 2, Name: "Widget"}},
		},
		{
			name: "namespace import reaches exports by member",
			code: []string{`import * as sdk from 'pkg';`, "sdk.run();"},
			want: []Reference{{Line: 3, Name: "run"}},
		},
		{
			name: "type-only import",
			code: []string{`import type { Config } from 'pkg';`},
			want: []Reference{{Line: 2, Name: "Config"}},
		},
		{
			name: "destructured require with rename",
			code: []string{`const { A, B: C } = require('pkg');`, "C.exec();"},
			want: []Reference{
				{Line: 2, Name: "A"},
				{Line: 2, Name: "B"},
				{Line: 3, Name: "B", Member: "exec"},
			},
		},
		{
			name: "dotted constructor keeps the class name",
			code: []string{"new sdk.Client();"},
			want: []Reference{{Line: 2, Name: "Client", IsInstantiation: true}},
		},
		{
			name: "static member access on a bare name",
			code: []string{"Widget.create();"},
			want: []Reference{{Line: 2, Name: "Widget", Member: "create"}},
		},
		{
			name: "member access on unknown receiver keeps the receiver",
			code: []string{"thing.shutdown();"},
			want: []Reference{{Line: 2, Name: "thing", Member: "shutdown"}},
		},
		{
			name: "typed declaration with instance tracking",
			code: []string{"const c: Client = new Client(cfg);", "c.run();"},
			want: []Reference{
				{Line: 2, Name: "Client", IsInstantiation: true},
				{Line: 3, Name: "Client", Member: "run"},
			},
		},
		{
			name: "string contents are not code",
			code: []string{`const u = "x.y: new Fake()";`},
			want: nil,
		},
		{
			name: "template literal contents are not code",
			code: []string{"const q = `new X()`;"},
			want: nil,
		},
		{
			name: "line comments are not code",
			code: []string{"// const g = new Ghost();"},
			want: nil,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lines := append([]string{"```js"}, tc.code...)
			lines = append(lines, "```", "")
			s := ScanDocument(Document{Path: "t.md", Source: []byte(strings.Join(lines, "\n"))})
			assert.Equal(t, tc.want, s.References)
		})
	}
}

func TestScanDocumentToleratesUnterminatedFence(t *testing.T) {
	src := strings.Join([]string{
		"# Broken",               // 1
		"",                       // 2
		"```js",                  // 3
		`import { A } from "x";`, // 4
		"",
	}, "\n")

	s := ScanDocument(Document{Path: "broken.md", Source: []byte(src)})
	assert.Equal(t, 1, s.CodeBlocks)
	assert.Equal(t, []Reference{{Line: 4, Name: "A"}}, s.References)
}

func TestScanDocumentWithoutCodeBlocks(t *testing.T) {
	s := ScanDocument(Document{Path: "prose.md", Source: []byte("# Title\n\nJust prose, `inline code`, nothing fenced.\n")})
	assert.Equal(t, 0, s.CodeBlocks)
	assert.Empty(t, s.References)
}

func TestIsScriptInfo(t *testing.T) {
	type testCase struct {
		info string
		want bool
	}
	cases := []testCase{
		{"js", true},
		{"ts", true},
		{"tsx", true},
		{"typescript", true},
		{"JS", true},
		{"ts {2,4}", true},
		{"js title=example.js", true},
		{"", false},
		{"bash", false},
		{"go", false},
		{"json", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, isScriptInfo(tc.info), "info %q", tc.info)
	}
}

func TestLoadAppliesPatterns(t *testing.T) {
	dir := t.TempDir()
	write := func(rel, contents string) {
		t.Helper()
		path := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	}
	write("README.md", "# readme\n")
	write("docs/guide.md", "# guide\n")
	write("docs/api.mdx", "# api\n")
	write("docs/notes.txt", "not markdown\n")

	docs, err := Load(dir, nil)
	require.NoError(t, err)
	var paths []string
	for _, d := range docs {
		paths = append(paths, d.Path)
	}
	assert.Equal(t, []string{"README.md", "docs/api.mdx", "docs/guide.md"}, paths)
	assert.Equal(t, "# readme\n", string(docs[0].Source))

	docs, err = Load(dir, []string{"**/*.mdx"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "docs/api.mdx", docs[0].Path)

	_, err = Load(filepath.Join(dir, "absent"), nil)
	require.Error(t, err)
}

func TestScanAll(t *testing.T) {
	docs := []Document{
		{Path: "a.md", Source: []byte("```js\nnew Alpha();\n```\n")},
		{Path: "b.md", Source: []byte("no code here\n")},
	}
	scans := ScanAll(docs)
	require.Len(t, scans, 2)
	assert.Equal(t, "a.md", scans[0].Path)
	assert.Equal(t, []Reference{{Line: 2, Name: "Alpha", IsInstantiation: true}}, scans[0].References)
	assert.Equal(t, 0, scans[1].CodeBlocks)
}
