package parser

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/indaco/pkgmeta/internal/core"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"regex", FormatRegex},
		{"json", FormatJSON},
		{"yaml", FormatYAML},
		{"toml", FormatTOML},
		{"raw", FormatRaw},
		{"", FormatRegex},
		{"ini", FormatRegex},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseFormat(tt.input); got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestReader_ReadRegex(t *testing.T) {
	tests := []struct {
		name    string
		content string
		pattern string
		want    string
		wantErr error
	}{
		{
			name:    "default marker",
			content: "#!/usr/bin/env python3\n\n_VERSION_ = '2.2'\n",
			pattern: DefaultVersionPattern,
			want:    "2.2",
		},
		{
			name:    "scenario version 3.7",
			content: "_VERSION_ = '3.7'",
			pattern: DefaultVersionPattern,
			want:    "3.7",
		},
		{
			name:    "first of several markers wins",
			content: "_VERSION_ = '1.0'\n# old: _VERSION_ = '0.9'\n_VERSION_ = '2.0'\n",
			pattern: DefaultVersionPattern,
			want:    "1.0",
		},
		{
			name:    "lazy capture stops at first quote",
			content: "_VERSION_ = '1.4.1' + 'dev'",
			pattern: DefaultVersionPattern,
			want:    "1.4.1",
		},
		{
			name:    "no marker",
			content: "VERSION = '1.0'\n",
			pattern: DefaultVersionPattern,
			wantErr: ErrNoMatch,
		},
		{
			name:    "double quotes do not match the marker",
			content: `_VERSION_ = "1.0"`,
			pattern: DefaultVersionPattern,
			wantErr: ErrNoMatch,
		},
		{
			name:    "empty literal is returned as is",
			content: "_VERSION_ = ''",
			pattern: DefaultVersionPattern,
			want:    "",
		},
		{
			name:    "custom pattern",
			content: `const Version = "0.4.0"`,
			pattern: `Version\s*=\s*"([^"]+)"`,
			want:    "0.4.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mfs := core.NewMockFileSystem()
			mfs.SetFile("/src/ddgr.py", []byte(tt.content))

			got, err := NewReader(mfs).ReadVersion(context.Background(), FileConfig{
				Path:    "/src/ddgr.py",
				Format:  FormatRegex,
				Pattern: tt.pattern,
			})

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got version %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReader_ReadRegex_IsIdempotent(t *testing.T) {
	mfs := core.NewMockFileSystem()
	mfs.SetFile("/ddgr.py", []byte("_VERSION_ = '2.2'\n"))
	reader := NewReader(mfs)
	cfg := FileConfig{Path: "/ddgr.py", Format: FormatRegex, Pattern: DefaultVersionPattern}

	first, err := reader.ReadVersion(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for range 3 {
		again, err := reader.ReadVersion(context.Background(), cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again != first {
			t.Fatalf("got %q on re-read, want %q", again, first)
		}
	}
}

func TestCompilePattern(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		wantErr bool
	}{
		{"default", DefaultVersionPattern, false},
		{"empty", "", true},
		{"invalid", "[invalid", true},
		{"no capturing group", `_VERSION_ = '.*?'`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompilePattern(tt.pattern)
			if (err != nil) != tt.wantErr {
				t.Errorf("CompilePattern(%q) error = %v, wantErr %v", tt.pattern, err, tt.wantErr)
			}
		})
	}
}

func TestReader_ReadStructured(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		content string
		format  Format
		field   string
		want    string
		wantErr bool
	}{
		{
			name:    "json",
			path:    "/package.json",
			content: `{"name": "ddgr", "version": "2.2.0"}`,
			format:  FormatJSON,
			field:   "version",
			want:    "2.2.0",
		},
		{
			name:    "jsonc with comments and trailing comma",
			path:    "/meta.jsonc",
			content: "{\n  // release\n  \"release\": {\"version\": \"1.0.0\",},\n}",
			format:  FormatJSON,
			field:   "release.version",
			want:    "1.0.0",
		},
		{
			name:    "yaml nested",
			path:    "/meta.yaml",
			content: "project:\n  version: 0.9.1\n",
			format:  FormatYAML,
			field:   "project.version",
			want:    "0.9.1",
		},
		{
			name:    "pyproject toml",
			path:    "/pyproject.toml",
			content: "[project]\nname = \"ddgr\"\nversion = \"2.2\"\n",
			format:  FormatTOML,
			field:   "project.version",
			want:    "2.2",
		},
		{
			name:    "field missing",
			path:    "/package.json",
			content: `{"name": "ddgr"}`,
			format:  FormatJSON,
			field:   "version",
			wantErr: true,
		},
		{
			name:    "field not a string",
			path:    "/package.json",
			content: `{"version": 2}`,
			format:  FormatJSON,
			field:   "version",
			wantErr: true,
		},
		{
			name:    "field path required",
			path:    "/meta.yaml",
			content: "version: 1.0.0\n",
			format:  FormatYAML,
			wantErr: true,
		},
		{
			name:    "broken toml",
			path:    "/pyproject.toml",
			content: "[project",
			format:  FormatTOML,
			field:   "project.version",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mfs := core.NewMockFileSystem()
			mfs.SetFile(tt.path, []byte(tt.content))

			result, err := NewReader(mfs).Read(context.Background(), FileConfig{
				Path:   tt.path,
				Format: tt.format,
				Field:  tt.field,
			})

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Version != tt.want {
				t.Errorf("got version %q, want %q", result.Version, tt.want)
			}
			if result.Format != tt.format || result.Path != tt.path {
				t.Errorf("result = %+v, want format %v and path %q", result, tt.format, tt.path)
			}
		})
	}
}

func TestReader_ReadStructured_FieldNotFoundSentinel(t *testing.T) {
	mfs := core.NewMockFileSystem()
	mfs.SetFile("/pyproject.toml", []byte("[project]\nname = \"ddgr\"\n"))

	_, err := NewReader(mfs).Read(context.Background(), FileConfig{
		Path:   "/pyproject.toml",
		Format: FormatTOML,
		Field:  "project.version",
	})
	if !errors.Is(err, ErrFieldNotFound) {
		t.Errorf("error = %v, want ErrFieldNotFound", err)
	}
}

func TestReader_ReadRaw(t *testing.T) {
	mfs := core.NewMockFileSystem()
	mfs.SetFile("/VERSION", []byte("  1.2.3\n"))
	mfs.SetFile("/EMPTY", []byte("\n"))
	reader := NewReader(mfs)

	got, err := reader.ReadVersion(context.Background(), FileConfig{Path: "/VERSION", Format: FormatRaw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "1.2.3" {
		t.Errorf("got %q, want %q", got, "1.2.3")
	}

	_, err = reader.ReadVersion(context.Background(), FileConfig{Path: "/EMPTY", Format: FormatRaw})
	if !errors.Is(err, ErrEmptyVersion) {
		t.Errorf("error = %v, want ErrEmptyVersion", err)
	}
}

func TestReader_Errors(t *testing.T) {
	mfs := core.NewMockFileSystem()
	reader := NewReader(mfs)
	ctx := context.Background()

	t.Run("missing file wraps ErrNotExist", func(t *testing.T) {
		_, err := reader.Read(ctx, FileConfig{Path: "/nope.py", Format: FormatRegex, Pattern: DefaultVersionPattern})
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("error = %v, want fs.ErrNotExist", err)
		}
	})

	t.Run("empty path", func(t *testing.T) {
		if _, err := reader.Read(ctx, FileConfig{Format: FormatRaw}); err == nil {
			t.Error("expected error, got nil")
		}
	})

	t.Run("invalid format", func(t *testing.T) {
		if _, err := reader.Read(ctx, FileConfig{Path: "/x", Format: "xml"}); err == nil {
			t.Error("expected error, got nil")
		}
	})

	t.Run("bad pattern is reported before reading", func(t *testing.T) {
		_, err := reader.Read(ctx, FileConfig{Path: "/nope.py", Format: FormatRegex, Pattern: "("})
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			t.Errorf("error = %v, want pattern error", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		mfs.SetFile("/ddgr.py", []byte("_VERSION_ = '1'"))
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := reader.Read(cctx, FileConfig{Path: "/ddgr.py", Format: FormatRegex, Pattern: DefaultVersionPattern})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}

func TestFormatForFile(t *testing.T) {
	tests := []struct {
		filename string
		want     Format
	}{
		{"package.json", FormatJSON},
		{"tsconfig.jsonc", FormatJSON},
		{"Chart.yaml", FormatYAML},
		{"conf/app.yml", FormatYAML},
		{"pyproject.toml", FormatTOML},
		{"VERSION", FormatRaw},
		{"sub/.version", FormatRaw},
		{"ddgr.py", FormatRegex},
		{"ddgr", FormatRegex},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := FormatForFile(tt.filename); got != tt.want {
				t.Errorf("FormatForFile(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestFieldForFile(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"package.json", "version"},
		{"rust/Cargo.toml", "package.version"},
		{"pyproject.toml", "project.version"},
		{"other.yaml", "version"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := FieldForFile(tt.filename); got != tt.want {
				t.Errorf("FieldForFile(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}
