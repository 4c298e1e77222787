package db

import "testing"

func TestIsPostgres(t *testing.T) {
	tests := []struct {
		dsn  string
		want bool
	}{
		{"postgres://user:pw@localhost:5432/factura", true},
		{"postgresql://user:pw@localhost/factura", true},
		{"host=localhost user=factura dbname=factura", true},
		{"factura.db", false},
		{"file:test?mode=memory", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsPostgres(tt.dsn); got != tt.want {
			t.Errorf("IsPostgres(%q) = %v, want %v", tt.dsn, got, tt.want)
		}
	}
}

func TestNormalizeDSN(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"url untouched", "postgres://u:p@h/db", "postgres://u:p@h/db"},
		{"quotes stripped", `"factura.db"`, "factura.db"},
		{"kv gets sslmode", "host=h user=u dbname=d", "host=h user=u dbname=d sslmode=disable"},
		{"kv keeps sslmode", "host=h sslmode=require", "host=h sslmode=require"},
		{"whitespace collapsed", "  host=h   user=u  ", "host=h user=u sslmode=disable"},
		{"sqlite path untouched", "factura.db", "factura.db"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeDSN(tt.in); got != tt.want {
				t.Errorf("NormalizeDSN(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
