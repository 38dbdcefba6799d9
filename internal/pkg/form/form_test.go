package form

import (
	"errors"
	"testing"

	"github.com/council-xenith/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var opts = Options{AllowedDomain: "iitp.ac.in"}

func intPtr(n int) *int           { return &n }
func floatPtr(f float64) *float64 { return &f }

func mustCompile(t *testing.T, defs ...domain.FieldDefinition) *Schema {
	t.Helper()
	s, err := Compile(defs, opts)
	require.NoError(t, err)
	return s
}

func TestValidate_RequiredMissing(t *testing.T) {
	s := mustCompile(t, domain.FieldDefinition{Key: "name", Label: "Full name", Type: domain.FieldText, Required: true})

	for _, values := range []map[string]any{
		{},
		{"name": nil},
		{"name": ""},
	} {
		errs := s.Validate(values)
		assert.Equal(t, map[string]string{"name": "Full name is required"}, errs)
	}
}

func TestValidate_RequiredEmptyCollection(t *testing.T) {
	s := mustCompile(t, domain.FieldDefinition{Key: "tracks", Label: "Tracks", Type: domain.FieldMultiSelect, Required: true})
	errs := s.Validate(map[string]any{"tracks": []any{}})
	assert.Equal(t, "Tracks is required", errs["tracks"])
}

func TestValidate_OptionalEmptySkipsRules(t *testing.T) {
	s := mustCompile(t, domain.FieldDefinition{
		Key: "bio", Type: domain.FieldTextarea,
		Validation: &domain.FieldValidation{MinLength: intPtr(10)},
	})
	assert.Empty(t, s.Validate(map[string]any{"bio": ""}))
	assert.Empty(t, s.Validate(map[string]any{}))
}

func TestValidate_AllConstraintsSatisfied(t *testing.T) {
	s := mustCompile(t,
		domain.FieldDefinition{Key: "name", Label: "Name", Type: domain.FieldText, Required: true,
			Validation: &domain.FieldValidation{MinLength: intPtr(2), MaxLength: intPtr(40)}},
		domain.FieldDefinition{Key: "email", Label: "Email", Type: domain.FieldEmail, Required: true,
			EmailRestriction: domain.EmailRestrictionDomain},
		domain.FieldDefinition{Key: "roll", Label: "Roll", Type: domain.FieldText,
			Validation: &domain.FieldValidation{Pattern: `^[0-9]{4}[A-Z]{2}[0-9]{2}$`}},
	)
	errs := s.Validate(map[string]any{"name": "Asha", "email": "asha@iitp.ac.in", "roll": "2101CS12"})
	assert.Empty(t, errs)
}

func TestValidate_LengthUsesCustomMessage(t *testing.T) {
	s := mustCompile(t, domain.FieldDefinition{Key: "name", Label: "Name", Type: domain.FieldText,
		Validation: &domain.FieldValidation{MinLength: intPtr(3), CustomMessage: "Too short"}})
	assert.Equal(t, "Too short", s.Validate(map[string]any{"name": "Al"})["name"])
}

func TestValidate_LengthDefaultMessages(t *testing.T) {
	s := mustCompile(t, domain.FieldDefinition{Key: "name", Label: "Name", Type: domain.FieldText,
		Validation: &domain.FieldValidation{MinLength: intPtr(3), MaxLength: intPtr(5)}})
	assert.Equal(t, "Name must be at least 3 characters", s.Validate(map[string]any{"name": "Al"})["name"])
	assert.Equal(t, "Name must be at most 5 characters", s.Validate(map[string]any{"name": "Alexander"})["name"])
}

func TestValidate_NumericRange(t *testing.T) {
	s := mustCompile(t, domain.FieldDefinition{Key: "age", Label: "age", Type: domain.FieldNumber,
		Validation: &domain.FieldValidation{Min: floatPtr(18), Max: floatPtr(60)}})

	errs := s.Validate(map[string]any{"age": float64(15)})
	require.Len(t, errs, 1)
	assert.Equal(t, "age must be at least 18", errs["age"])

	assert.Empty(t, s.Validate(map[string]any{"age": float64(30)}))
	assert.Empty(t, s.Validate(map[string]any{"age": "30"}))
	assert.Equal(t, "age must be at most 60", s.Validate(map[string]any{"age": 61})["age"])
}

func TestValidate_NumericIgnoresCustomMessage(t *testing.T) {
	s := mustCompile(t, domain.FieldDefinition{Key: "age", Label: "Age", Type: domain.FieldNumber,
		Validation: &domain.FieldValidation{Min: floatPtr(18), CustomMessage: "Adults only"}})
	assert.Equal(t, "Age must be at least 18", s.Validate(map[string]any{"age": 12})["age"])
}

func TestValidate_NumericRejectsNonNumber(t *testing.T) {
	s := mustCompile(t, domain.FieldDefinition{Key: "age", Label: "Age", Type: domain.FieldNumber})
	assert.Equal(t, "Age must be a number", s.Validate(map[string]any{"age": "abc"})["age"])
}

func TestValidate_PatternDefaultAndCustom(t *testing.T) {
	s := mustCompile(t,
		domain.FieldDefinition{Key: "phone", Label: "Phone", Type: domain.FieldPhone,
			Validation: &domain.FieldValidation{Pattern: `^[0-9]{10}$`}},
		domain.FieldDefinition{Key: "roll", Label: "Roll", Type: domain.FieldText,
			Validation: &domain.FieldValidation{Pattern: `^[0-9]+$`, CustomMessage: "Digits only"}},
	)
	errs := s.Validate(map[string]any{"phone": "12ab", "roll": "x"})
	assert.Equal(t, "Invalid Phone format", errs["phone"])
	assert.Equal(t, "Digits only", errs["roll"])
}

func TestValidate_EmailDomainRestriction(t *testing.T) {
	s := mustCompile(t, domain.FieldDefinition{Key: "email", Label: "Email", Type: domain.FieldEmail,
		EmailRestriction: domain.EmailRestrictionDomain})

	errs := s.Validate(map[string]any{"email": "user@otherdomain.com"})
	assert.Equal(t, "Only @iitp.ac.in email addresses are allowed", errs["email"])

	assert.Empty(t, s.Validate(map[string]any{"email": "user@iitp.ac.in"}))
	assert.Empty(t, s.Validate(map[string]any{"email": "User@IITP.AC.IN"}))
}

func TestValidate_EmailUnrestrictedAcceptsAnyDomain(t *testing.T) {
	s := mustCompile(t, domain.FieldDefinition{Key: "email", Type: domain.FieldEmail, EmailRestriction: domain.EmailRestrictionAll})
	assert.Empty(t, s.Validate(map[string]any{"email": "user@otherdomain.com"}))
}

func TestValidate_FirstErrorWins(t *testing.T) {
	s := mustCompile(t, domain.FieldDefinition{Key: "email", Label: "Email", Type: domain.FieldEmail,
		EmailRestriction: domain.EmailRestrictionDomain,
		Validation:       &domain.FieldValidation{MaxLength: intPtr(5)}})
	// Violates both the length bound and the domain restriction.
	errs := s.Validate(map[string]any{"email": "someone@gmail.com"})
	assert.Equal(t, "Email must be at most 5 characters", errs["email"])
}

func TestValidate_ShowIfIsIgnored(t *testing.T) {
	s := mustCompile(t,
		domain.FieldDefinition{Key: "hostel", Type: domain.FieldRadio},
		domain.FieldDefinition{Key: "room", Label: "Room", Type: domain.FieldText, Required: true,
			ShowIf: &domain.DisplayCondition{Field: "hostel", Equals: "yes"}},
	)
	errs := s.Validate(map[string]any{"hostel": "no"})
	assert.Equal(t, "Room is required", errs["room"])
}

func TestKnownType(t *testing.T) {
	assert.True(t, KnownType(domain.FieldEmail))
	assert.True(t, KnownType(domain.FieldMultiSelect))
	assert.False(t, KnownType(domain.FieldType("signature")))
}

func TestCompile_Rejects(t *testing.T) {
	cases := map[string][]domain.FieldDefinition{
		"duplicate key": {{Key: "a", Type: domain.FieldText}, {Key: "a", Type: domain.FieldText}},
		"empty key":     {{Key: " ", Type: domain.FieldText}},
		"unknown type":  {{Key: "a", Type: "slider"}},
		"bad pattern":   {{Key: "a", Type: domain.FieldText, Validation: &domain.FieldValidation{Pattern: "("}}},
	}
	for name, defs := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Compile(defs, opts)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrBadRequest))
		})
	}
}

func TestCompile_DomainRestrictionNeedsConfiguredDomain(t *testing.T) {
	_, err := Compile([]domain.FieldDefinition{{Key: "e", Type: domain.FieldEmail, EmailRestriction: domain.EmailRestrictionDomain}}, Options{})
	assert.Error(t, err)
}

func TestEmailValue(t *testing.T) {
	s := mustCompile(t,
		domain.FieldDefinition{Key: "name", Type: domain.FieldText},
		domain.FieldDefinition{Key: "mail", Type: domain.FieldEmail},
	)
	assert.Equal(t, "a@iitp.ac.in", s.EmailValue(map[string]any{"mail": "  A@IITP.ac.in "}))
	assert.Equal(t, "", mustCompile(t, domain.FieldDefinition{Key: "n", Type: domain.FieldText}).EmailValue(map[string]any{}))
}

func TestKeys_DeclaredOrder(t *testing.T) {
	s := mustCompile(t,
		domain.FieldDefinition{Key: "b", Type: domain.FieldText},
		domain.FieldDefinition{Key: "a", Type: domain.FieldNumber},
	)
	assert.Equal(t, []string{"b", "a"}, s.Keys())
}
