package validator

import "testing"

type createPermissionPayload struct {
	ID   string `json:"id" validate:"required,min=2"`
	Name string `json:"name" validate:"required"`
}

func TestValidateStructPasses(t *testing.T) {
	payload := createPermissionPayload{ID: "booking.create", Name: "Create booking"}
	if err := ValidateStruct(payload); err != nil {
		t.Fatalf("expected validation to pass, got %v", err)
	}
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	err := ValidateStruct(createPermissionPayload{})
	if err == nil {
		t.Fatal("expected validation to fail")
	}

	failures, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(failures) != 2 {
		t.Fatalf("expected 2 failures, got %d", len(failures))
	}
	if failures[0].Field != "id" {
		t.Fatalf("expected json field name \"id\", got %q", failures[0].Field)
	}
	if failures[0].Tag != "required" {
		t.Fatalf("expected required tag, got %q", failures[0].Tag)
	}
}
