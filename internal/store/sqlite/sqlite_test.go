package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/certvault/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New("", nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return s
}

func cert(name, code, image string) core.Certificate {
	return core.Certificate{Name: name, Code: code, ImageData: image}
}

func TestStore_InsertOneAndFind(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.InsertOne(ctx, cert("Grace Hopper", "GH-1", "aW1hZ2U="))
	if err != nil {
		t.Fatalf("InsertOne() error = %v", err)
	}
	if id <= 0 {
		t.Errorf("InsertOne() id = %d, want > 0", id)
	}

	got, err := s.FindByCode(ctx, "GH-1")
	if err != nil {
		t.Fatalf("FindByCode() error = %v", err)
	}
	want := core.Certificate{ID: id, Name: "Grace Hopper", Code: "GH-1", ImageData: "aW1hZ2U="}
	if got != want {
		t.Errorf("FindByCode() = %+v, want %+v", got, want)
	}

	second, err := s.InsertOne(ctx, cert("Other", "GH-2", "x"))
	if err != nil {
		t.Fatalf("InsertOne() error = %v", err)
	}
	if second == id {
		t.Errorf("ids not distinct: %d", second)
	}
}

func TestStore_EmptyAndLargeValues(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	large := strings.Repeat("A", 2<<20)

	tests := []struct {
		name string
		cert core.Certificate
	}{
		{"empty name and image", cert("", "EMPTY", "")},
		{"large image", cert("Big", "BIG", large)},
		{"unicode", cert("Zoë Ångström", "ÜNI-1", "data:image/png;base64,AA==")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.InsertOne(ctx, tt.cert); err != nil {
				t.Fatalf("InsertOne() error = %v", err)
			}
			got, err := s.FindByCode(ctx, tt.cert.Code)
			if err != nil {
				t.Fatalf("FindByCode() error = %v", err)
			}
			if got.Name != tt.cert.Name || got.ImageData != tt.cert.ImageData {
				t.Errorf("round trip mismatch for %q", tt.cert.Code)
			}
		})
	}
}

func TestStore_InsertOneDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.InsertOne(ctx, cert("First", "DUP", "1")); err != nil {
		t.Fatalf("InsertOne() error = %v", err)
	}

	_, err := s.InsertOne(ctx, cert("Second", "DUP", "2"))
	if !errors.Is(err, core.ErrDuplicateCode) {
		t.Fatalf("InsertOne() error = %v, want ErrDuplicateCode", err)
	}

	got, err := s.FindByCode(ctx, "DUP")
	if err != nil {
		t.Fatalf("FindByCode() error = %v", err)
	}
	if got.Name != "First" || got.ImageData != "1" {
		t.Errorf("stored record changed: %+v", got)
	}
}

func TestStore_InsertMany(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	certs := make([]core.Certificate, 0, 450)
	for i := 0; i < cap(certs); i++ {
		certs = append(certs, cert(fmt.Sprintf("N%d", i), fmt.Sprintf("C%d", i), "img"))
	}

	n, err := s.InsertMany(ctx, certs)
	if err != nil {
		t.Fatalf("InsertMany() error = %v", err)
	}
	if n != len(certs) {
		t.Errorf("InsertMany() = %d, want %d", n, len(certs))
	}

	for _, code := range []string{"C0", "C199", "C200", "C449"} {
		ok, err := s.ExistsByCode(ctx, code)
		if err != nil {
			t.Fatalf("ExistsByCode(%q) error = %v", code, err)
		}
		if !ok {
			t.Errorf("ExistsByCode(%q) = false", code)
		}
	}
}

func TestStore_InsertManyEmpty(t *testing.T) {
	s := newTestStore(t)

	n, err := s.InsertMany(context.Background(), nil)
	if err != nil || n != 0 {
		t.Errorf("InsertMany(nil) = %d, %v; want 0, nil", n, err)
	}
}

func TestStore_InsertManyIsAtomic(t *testing.T) {
	tests := []struct {
		name  string
		seed  []core.Certificate
		batch []core.Certificate
	}{
		{
			name:  "collides with stored code",
			seed:  []core.Certificate{cert("Old", "TAKEN", "o")},
			batch: []core.Certificate{cert("A", "FREE-1", "a"), cert("B", "TAKEN", "b")},
		},
		{
			name:  "collides within batch",
			batch: []core.Certificate{cert("A", "FREE-1", "a"), cert("B", "TWICE", "b"), cert("C", "TWICE", "c")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			ctx := context.Background()
			for _, c := range tt.seed {
				if _, err := s.InsertOne(ctx, c); err != nil {
					t.Fatalf("seed InsertOne() error = %v", err)
				}
			}

			n, err := s.InsertMany(ctx, tt.batch)
			if !errors.Is(err, core.ErrDuplicateCode) {
				t.Fatalf("InsertMany() = %d, %v; want ErrDuplicateCode", n, err)
			}

			ok, err := s.ExistsByCode(ctx, "FREE-1")
			if err != nil {
				t.Fatalf("ExistsByCode() error = %v", err)
			}
			if ok {
				t.Error("partial batch committed")
			}
		})
	}
}

func TestStore_FindByCodeNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.FindByCode(context.Background(), "MISSING")
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("FindByCode() error = %v, want ErrNotFound", err)
	}
}

func TestStore_ExistsByCode(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ok, err := s.ExistsByCode(ctx, "X")
	if err != nil || ok {
		t.Fatalf("ExistsByCode() on empty store = %v, %v", ok, err)
	}

	if _, err := s.InsertOne(ctx, cert("X", "X", "x")); err != nil {
		t.Fatalf("InsertOne() error = %v", err)
	}

	ok, err = s.ExistsByCode(ctx, "X")
	if err != nil || !ok {
		t.Errorf("ExistsByCode() = %v, %v; want true", ok, err)
	}

	// Codes are compared exactly.
	ok, err = s.ExistsByCode(ctx, "x")
	if err != nil || ok {
		t.Errorf("ExistsByCode(lowercase) = %v, %v; want false", ok, err)
	}
}

func TestStore_SeparateInMemoryStores(t *testing.T) {
	a := newTestStore(t)
	b := newTestStore(t)
	ctx := context.Background()

	if _, err := a.InsertOne(ctx, cert("A", "ONLY-A", "a")); err != nil {
		t.Fatalf("InsertOne() error = %v", err)
	}
	ok, err := b.ExistsByCode(ctx, "ONLY-A")
	if err != nil {
		t.Fatalf("ExistsByCode() error = %v", err)
	}
	if ok {
		t.Error("in-memory stores share data")
	}
}

func TestStore_FilePersistsAcrossReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	ctx := context.Background()

	s, err := New(dir, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if _, err := s.InsertOne(ctx, cert("Kept", "KEEP", "k")); err != nil {
		t.Fatalf("InsertOne() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, FileName)); err != nil {
		t.Fatalf("database file not created: %v", err)
	}

	reopened, err := New(dir, nil)
	if err != nil {
		t.Fatalf("New() reopen error = %v", err)
	}
	defer reopened.Close()

	// Migrating an existing schema is a no-op.
	if err := reopened.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() on existing schema error = %v", err)
	}
	got, err := reopened.FindByCode(ctx, "KEEP")
	if err != nil {
		t.Fatalf("FindByCode() after reopen error = %v", err)
	}
	if got.Name != "Kept" {
		t.Errorf("FindByCode() = %+v", got)
	}
	if err := reopened.Ping(ctx); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestFileDSN(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"relative", "certificates.db", "file:certificates.db?"},
		{"absolute", "/var/data/certificates.db", "file:///var/data/certificates.db?"},
		{"query and fragment chars", "/srv/a?mode=memory#x/certificates.db", "file:///srv/a%3Fmode=memory%23x/certificates.db?"},
		{"percent", "/srv/100%/certificates.db", "file:///srv/100%25/certificates.db?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fileDSN(tt.path)
			if !strings.HasPrefix(got, tt.want) {
				t.Errorf("fileDSN(%q) = %q, want prefix %q", tt.path, got, tt.want)
			}
			if strings.Count(got, "?") != 1 || strings.Contains(got, "#") {
				t.Errorf("fileDSN(%q) = %q: path leaked into query or fragment", tt.path, got)
			}
			if !strings.Contains(got, "_pragma=busy_timeout") {
				t.Errorf("fileDSN(%q) = %q: pragmas missing", tt.path, got)
			}
		})
	}
}

func TestStore_DataDirWithURIChars(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a?mode=memory#frag")
	ctx := context.Background()

	s, err := New(dir, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if _, err := s.InsertOne(ctx, cert("Odd", "ODD", "o")); err != nil {
		t.Fatalf("InsertOne() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, FileName)); err != nil {
		t.Fatalf("database file not created inside %q: %v", dir, err)
	}

	reopened, err := New(dir, nil)
	if err != nil {
		t.Fatalf("New() reopen error = %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.FindByCode(ctx, "ODD"); err != nil {
		t.Errorf("FindByCode() after reopen error = %v", err)
	}
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"untranslated unique violation", errors.New("constraint failed: UNIQUE constraint failed: certificates.code (2067)"), core.ErrDuplicateCode},
		{"other error passes through", errors.New("disk I/O error"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translate(tt.err)
			switch {
			case tt.err == nil:
				if got != nil {
					t.Errorf("translate(nil) = %v", got)
				}
			case tt.want == nil:
				if got != tt.err {
					t.Errorf("translate() = %v, want passthrough", got)
				}
			case !errors.Is(got, tt.want):
				t.Errorf("translate() = %v, want %v", got, tt.want)
			}
		})
	}
}
