package utils

import (
	"strings"
	"testing"
)

func TestValidationError(t *testing.T) {
	tests := []struct {
		name     string
		err      ValidationError
		expected string
	}{
		{
			name: "error with field",
			err: ValidationError{
				Field:   "rootClass",
				Value:   "",
				Message: "cannot be empty",
			},
			expected: "validation error for field 'rootClass': cannot be empty",
		},
		{
			name: "error without field",
			err: ValidationError{
				Message: "invalid format",
			},
			expected: "validation error: invalid format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("ValidationError.Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestNotEmpty(t *testing.T) {
	validator := NotEmpty("test_field")

	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"valid string", "hello", false},
		{"empty string", "", true},
		{"whitespace only", "   ", false}, // NotEmpty only checks for empty, not whitespace
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("NotEmpty() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAtLeast(t *testing.T) {
	validator := AtLeast("maxErrors", 0)

	if err := validator(0); err != nil {
		t.Errorf("AtLeast(0) rejected 0: %v", err)
	}
	err := validator(-1)
	if err == nil {
		t.Fatal("AtLeast(0) accepted -1")
	}
	if !strings.Contains(err.Error(), "must be at least 0, got -1") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestIsQualifiedName(t *testing.T) {
	validator := IsQualifiedName("class")

	tests := []struct {
		value   string
		wantErr bool
	}{
		{"jakarta.ejb.EJBHome", false},
		{"Object", false},
		{"com.acme.Outer$Inner", false},
		{"", true},
		{"com..acme", true},
		{"com.acme.", true},
		{"1com.acme", true},
		{"com acme", true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			err := validator(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("IsQualifiedName(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestOptional(t *testing.T) {
	validator := Optional(IsQualifiedName("timerType"))

	if err := validator(""); err != nil {
		t.Errorf("Optional() rejected the zero value: %v", err)
	}
	if err := validator("not a name"); err == nil {
		t.Error("Optional() accepted an invalid value")
	}
}

func TestValidatorChain(t *testing.T) {
	chain := NewValidatorChain(NotEmpty("rootClass")).Add(IsQualifiedName("rootClass"))

	if err := chain.Validate("java.lang.Object"); err != nil {
		t.Errorf("chain rejected a valid name: %v", err)
	}
	err := chain.Validate("")
	if err == nil {
		t.Fatal("chain accepted an empty name")
	}
	if !strings.Contains(err.Error(), "cannot be empty") {
		t.Errorf("chain did not stop at the first validator: %v", err)
	}
}

func TestValidateEach(t *testing.T) {
	validator := ValidateEach("excludedInterfaces", IsQualifiedName(""))

	if err := validator([]string{"java.io.Serializable", "java.io.Externalizable"}); err != nil {
		t.Errorf("ValidateEach() error = %v", err)
	}
	err := validator([]string{"java.io.Serializable", "bad name"})
	if err == nil {
		t.Fatal("ValidateEach() accepted an invalid item")
	}
	if !strings.Contains(err.Error(), "excludedInterfaces[1]") {
		t.Errorf("error does not name the item: %v", err)
	}
}

func TestProblems(t *testing.T) {
	var problems Problems
	problems.Check(nil)
	if err := problems.Err("invalid configuration"); err != nil {
		t.Fatalf("Err() = %v, want nil", err)
	}

	problems.Check(NotEmpty("a")(""))
	problems.Check(AtLeast("b", 1)(0))
	err := problems.Err("invalid configuration")
	if err == nil {
		t.Fatal("Err() = nil, want an error")
	}
	want := "invalid configuration: validation error for field 'a': cannot be empty; validation error for field 'b': must be at least 1, got 0"
	if err.Error() != want {
		t.Errorf("Err() = %q, want %q", err.Error(), want)
	}
}
