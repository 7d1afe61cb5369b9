package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const testSecretID = "0123456789abcdef0123456789abcdef"

var testSecret = []byte("a-test-secret-of-at-least-32-bytes!!")

// fakeQueries serves get-api-key-by-hash from an in-memory row set.
type fakeQueries struct {
	rows    map[string]keyRow
	err     error
	touched []string
}

type keyRow struct {
	id        string
	shopID    int64
	revokedAt sql.NullTime
	lastUsed  sql.NullTime
}

func (f *fakeQueries) Get(ctx context.Context, name string, dest interface{}, args ...interface{}) error {
	if f.err != nil {
		return f.err
	}
	row, ok := f.rows[string(args[0].([]byte))]
	if !ok {
		return sql.ErrNoRows
	}
	r := dest.(*struct {
		APIKeyID   string       `db:"api_key_id"`
		ShopID     int64        `db:"shop_id"`
		RevokedAt  sql.NullTime `db:"revoked_at"`
		LastUsedAt sql.NullTime `db:"last_used_at"`
	})
	r.APIKeyID = row.id
	r.ShopID = row.shopID
	r.RevokedAt = row.revokedAt
	r.LastUsedAt = row.lastUsed
	return nil
}

func (f *fakeQueries) Exec(ctx context.Context, name string, args ...interface{}) (sql.Result, error) {
	f.touched = append(f.touched, args[1].(string))
	return nil, nil
}

func newTestAuthenticator(t *testing.T, row keyRow) (*Authenticator, *fakeQueries, string) {
	t.Helper()
	key, err := GenerateAPIKey(testSecretID)
	if err != nil {
		t.Fatalf("GenerateAPIKey() error = %v, want nil", err)
	}
	q := &fakeQueries{rows: map[string]keyRow{string(ComputeHMAC(testSecret, key)): row}}
	return NewAuthenticator(map[string][]byte{testSecretID: testSecret}, q), q, key
}

func TestParseAPIKey(t *testing.T) {
	random := strings.Repeat("ab", 32)
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{name: "valid", key: FormatAPIKey(testSecretID, random)},
		{name: "wrong prefix", key: "xx-v1-" + testSecretID + "-" + random, wantErr: true},
		{name: "wrong version", key: "sb-v2-" + testSecretID + "-" + random, wantErr: true},
		{name: "short secret id", key: "sb-v1-abc-" + random, wantErr: true},
		{name: "short random", key: "sb-v1-" + testSecretID + "-abc", wantErr: true},
		{name: "uppercase hex", key: "sb-v1-" + strings.ToUpper(testSecretID) + "-" + random, wantErr: true},
		{name: "extra segment", key: FormatAPIKey(testSecretID, random) + "-x", wantErr: true},
		{name: "empty", key: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			secretID, randomData, err := ParseAPIKey(tt.key)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidKeyFormat) {
					t.Errorf("ParseAPIKey() error = %v, want ErrInvalidKeyFormat", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAPIKey() error = %v, want nil", err)
			}
			if secretID != testSecretID || randomData != random {
				t.Errorf("ParseAPIKey() = (%s, %s), want (%s, %s)", secretID, randomData, testSecretID, random)
			}
		})
	}
}

func TestGenerateAPIKey(t *testing.T) {
	a, err := GenerateAPIKey(testSecretID)
	if err != nil {
		t.Fatalf("GenerateAPIKey() error = %v, want nil", err)
	}
	b, _ := GenerateAPIKey(testSecretID)
	if a == b {
		t.Errorf("GenerateAPIKey() returned the same key twice")
	}
	if _, _, err := ParseAPIKey(a); err != nil {
		t.Errorf("ParseAPIKey(generated) error = %v, want nil", err)
	}
	if _, err := GenerateAPIKey("not-hex"); err == nil {
		t.Errorf("GenerateAPIKey(bad id) error = nil, want error")
	}
}

func TestVerifyHMAC(t *testing.T) {
	h := ComputeHMAC(testSecret, "key")
	if !VerifyHMAC(h, ComputeHMAC(testSecret, "key")) {
		t.Errorf("VerifyHMAC(same input) = false, want true")
	}
	if VerifyHMAC(h, ComputeHMAC([]byte("other"), "key")) {
		t.Errorf("VerifyHMAC(other secret) = true, want false")
	}
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid key resolves shop", func(t *testing.T) {
		a, q, key := newTestAuthenticator(t, keyRow{id: "k1", shopID: 42})
		shopID, err := a.Authenticate(ctx, key)
		if err != nil {
			t.Fatalf("Authenticate() error = %v, want nil", err)
		}
		if shopID != 42 {
			t.Errorf("Authenticate() = %d, want 42", shopID)
		}
		if len(q.touched) != 1 || q.touched[0] != "k1" {
			t.Errorf("last_used_at updates = %v, want [k1]", q.touched)
		}
	})

	t.Run("recent use is not rewritten", func(t *testing.T) {
		now := time.Date(2026, time.May, 1, 12, 0, 0, 0, time.UTC)
		a, q, key := newTestAuthenticator(t, keyRow{
			id: "k1", shopID: 42,
			lastUsed: sql.NullTime{Time: now.Add(-30 * time.Second), Valid: true},
		})
		a.now = func() time.Time { return now }
		if _, err := a.Authenticate(ctx, key); err != nil {
			t.Fatalf("Authenticate() error = %v, want nil", err)
		}
		if len(q.touched) != 0 {
			t.Errorf("last_used_at updates = %v, want none", q.touched)
		}
	})

	t.Run("revoked key", func(t *testing.T) {
		a, _, key := newTestAuthenticator(t, keyRow{
			id: "k1", shopID: 42,
			revokedAt: sql.NullTime{Time: time.Now(), Valid: true},
		})
		if _, err := a.Authenticate(ctx, key); !errors.Is(err, ErrKeyRevoked) {
			t.Errorf("Authenticate() error = %v, want ErrKeyRevoked", err)
		}
	})

	t.Run("unknown secret id", func(t *testing.T) {
		a, _, _ := newTestAuthenticator(t, keyRow{id: "k1", shopID: 42})
		other, _ := GenerateAPIKey(strings.Repeat("f", 32))
		if _, err := a.Authenticate(ctx, other); !errors.Is(err, ErrUnknownKey) {
			t.Errorf("Authenticate() error = %v, want ErrUnknownKey", err)
		}
	})

	t.Run("key not stored", func(t *testing.T) {
		a, _, _ := newTestAuthenticator(t, keyRow{id: "k1", shopID: 42})
		other, _ := GenerateAPIKey(testSecretID)
		if _, err := a.Authenticate(ctx, other); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Authenticate() error = %v, want ErrInvalidKey", err)
		}
	})

	t.Run("database failure", func(t *testing.T) {
		a, q, key := newTestAuthenticator(t, keyRow{id: "k1", shopID: 42})
		q.err = errors.New("connection refused")
		if _, err := a.Authenticate(ctx, key); !errors.Is(err, ErrDatabase) {
			t.Errorf("Authenticate() error = %v, want ErrDatabase", err)
		}
	})
}

func TestUnaryInterceptor(t *testing.T) {
	a, q, key := newTestAuthenticator(t, keyRow{id: "k1", shopID: 7})
	interceptor := a.UnaryInterceptor("/grpc.health.v1.Health/Check")

	var gotShop int64
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		gotShop, _ = ShopIDFromContext(ctx)
		return "ok", nil
	}
	info := &grpc.UnaryServerInfo{FullMethod: "/shutterbook.admin.v1.FormBuilder/GetDraft"}

	tests := []struct {
		name     string
		ctx      context.Context
		info     *grpc.UnaryServerInfo
		dbErr    error
		wantCode codes.Code
		wantShop int64
	}{
		{name: "no metadata", ctx: context.Background(), info: info, wantCode: codes.Unauthenticated},
		{
			name:     "missing key",
			ctx:      metadata.NewIncomingContext(context.Background(), metadata.Pairs("other", "x")),
			info:     info,
			wantCode: codes.Unauthenticated,
		},
		{
			name:     "valid key",
			ctx:      metadata.NewIncomingContext(context.Background(), metadata.Pairs(MetadataKey, key)),
			info:     info,
			wantCode: codes.OK,
			wantShop: 7,
		},
		{
			name:     "database down",
			ctx:      metadata.NewIncomingContext(context.Background(), metadata.Pairs(MetadataKey, key)),
			info:     info,
			dbErr:    errors.New("boom"),
			wantCode: codes.Unavailable,
		},
		{
			name:     "skipped method",
			ctx:      context.Background(),
			info:     &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"},
			wantCode: codes.OK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotShop = 0
			q.err = tt.dbErr
			_, err := interceptor(tt.ctx, nil, tt.info, handler)
			if got := status.Code(err); got != tt.wantCode {
				t.Errorf("interceptor() code = %v, want %v", got, tt.wantCode)
			}
			if gotShop != tt.wantShop {
				t.Errorf("ShopIDFromContext() = %d, want %d", gotShop, tt.wantShop)
			}
		})
	}
}
