package config

import "testing"

func TestValidateIndexNameRejectsLiteralDiskover(t *testing.T) {
	if err := ValidateIndexName("diskover"); err == nil {
		t.Error("expected error for literal index name \"diskover\"")
	}
}

func TestValidateIndexNameRejectsMissingPrefix(t *testing.T) {
	if err := ValidateIndexName("myindex"); err == nil {
		t.Error("expected error for index name without diskover- prefix")
	}
}

func TestValidateIndexNameAcceptsPrefixed(t *testing.T) {
	if err := ValidateIndexName("diskover-prod"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
