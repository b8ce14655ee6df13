package db

import "testing"

func TestSchemaVersion_CountsMigrations(t *testing.T) {
	if got := SchemaVersion(); got != 2 {
		t.Errorf("SchemaVersion() = %d, want 2", got)
	}
}
