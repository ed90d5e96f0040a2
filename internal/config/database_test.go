package config

import "testing"

func TestBuildDSN(t *testing.T) {
	dsn := buildDSN(DatabaseConfig{
		Host:     "localhost",
		Port:     "3306",
		User:     "shamba",
		Password: "secret",
		DBName:   "shambacredit",
	})

	want := "shamba:secret@tcp(localhost:3306)/shambacredit?charset=utf8mb4&parseTime=True&loc=Local"
	if dsn != want {
		t.Errorf("buildDSN() = %q, want %q", dsn, want)
	}
}

func TestHealthCheckNilHandle(t *testing.T) {
	if err := HealthCheck(nil); err == nil {
		t.Error("HealthCheck(nil) should report an uninitialized database")
	}
}

func TestCloseDatabaseNilHandle(t *testing.T) {
	if err := CloseDatabase(nil); err != nil {
		t.Errorf("CloseDatabase(nil) = %v, want nil", err)
	}
}
