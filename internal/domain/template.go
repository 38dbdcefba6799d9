package domain

import "time"

// FieldType enumerates the input kinds a registration template may declare.
type FieldType string

const (
	FieldText        FieldType = "text"
	FieldTextarea    FieldType = "textarea"
	FieldEmail       FieldType = "email"
	FieldNumber      FieldType = "number"
	FieldPhone       FieldType = "phone"
	FieldURL         FieldType = "url"
	FieldDate        FieldType = "date"
	FieldSelect      FieldType = "select"
	FieldRadio       FieldType = "radio"
	FieldCheckbox    FieldType = "checkbox"
	FieldMultiSelect FieldType = "multiselect"
	FieldFile        FieldType = "file"
)

// EmailRestriction limits which addresses an email field accepts.
type EmailRestriction string

const (
	EmailRestrictionAll    EmailRestriction = "all"
	EmailRestrictionDomain EmailRestriction = "iitp"
)

// FieldValidation holds the optional per-field rule bounds.
type FieldValidation struct {
	MinLength     *int     `json:"minLength,omitempty" dynamodbav:"min_length,omitempty"`
	MaxLength     *int     `json:"maxLength,omitempty" dynamodbav:"max_length,omitempty"`
	Min           *float64 `json:"min,omitempty" dynamodbav:"min,omitempty"`
	Max           *float64 `json:"max,omitempty" dynamodbav:"max,omitempty"`
	Pattern       string   `json:"pattern,omitempty" dynamodbav:"pattern,omitempty"`
	CustomMessage string   `json:"customMessage,omitempty" dynamodbav:"custom_message,omitempty"`
}

// DisplayCondition hints the client to show a field only when another
// field holds a given value. Validation ignores it.
type DisplayCondition struct {
	Field  string `json:"field" dynamodbav:"field"`
	Equals string `json:"equals" dynamodbav:"equals"`
}

type FieldDefinition struct {
	Key              string            `json:"key" dynamodbav:"key" validate:"required,max=64"`
	Label            string            `json:"label" dynamodbav:"label" validate:"required,max=200"`
	Type             FieldType         `json:"type" dynamodbav:"type" validate:"required,fieldtype"`
	Required         bool              `json:"required" dynamodbav:"required"`
	Placeholder      string            `json:"placeholder,omitempty" dynamodbav:"placeholder,omitempty"`
	Options          []string          `json:"options,omitempty" dynamodbav:"options,omitempty"`
	Validation       *FieldValidation  `json:"validation,omitempty" dynamodbav:"validation,omitempty"`
	EmailRestriction EmailRestriction  `json:"emailRestriction,omitempty" dynamodbav:"email_restriction,omitempty"`
	ShowIf           *DisplayCondition `json:"showIf,omitempty" dynamodbav:"show_if,omitempty"`
}

// RegistrationTemplate is an admin-defined registration form. PK: slug.
type RegistrationTemplate struct {
	Slug         string            `json:"slug" dynamodbav:"slug"`
	Title        string            `json:"title" dynamodbav:"title"`
	Description  string            `json:"description,omitempty" dynamodbav:"description"`
	BannerURL    *string           `json:"bannerUrl,omitempty" dynamodbav:"banner_url"`
	Fields       []FieldDefinition `json:"fields" dynamodbav:"fields"`
	Active       bool              `json:"active" dynamodbav:"active"`
	PasswordHash string            `json:"-" dynamodbav:"password_hash,omitempty"`
	CreatedBy    string            `json:"createdBy" dynamodbav:"created_by"`
	CreatedAt    time.Time         `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt    time.Time         `json:"updatedAt" dynamodbav:"updated_at"`
}

// Protected reports whether the template requires a password.
func (t *RegistrationTemplate) Protected() bool { return t.PasswordHash != "" }

type TemplateInput struct {
	Slug        string            `json:"slug" validate:"required,slug,max=64"`
	Title       string            `json:"title" validate:"required,max=200"`
	Description string            `json:"description" validate:"max=5000"`
	BannerURL   *string           `json:"bannerUrl" validate:"omitempty,url"`
	Fields      []FieldDefinition `json:"fields" validate:"required,min=1,dive"`
	Active      *bool             `json:"active"`
	Password    *string           `json:"password" validate:"omitempty,min=4,max=72"`

	// ClearPassword removes an existing password on update.
	ClearPassword bool `json:"clearPassword"`
}

// Submission is one set of answers against a template.
// Unique per (TemplateSlug, Email) when Email is present.
type Submission struct {
	SubmissionID string         `json:"id" dynamodbav:"submission_id"`
	TemplateSlug string         `json:"templateSlug" dynamodbav:"template_slug"`
	Email        string         `json:"email,omitempty" dynamodbav:"email,omitempty"`
	Data         map[string]any `json:"data" dynamodbav:"data"`
	CreatedAt    time.Time      `json:"createdAt" dynamodbav:"created_at"`
}

type SubmitRequest struct {
	TemplateSlug string         `json:"templateSlug" validate:"required"`
	Data         map[string]any `json:"data" validate:"required"`
	Password     string         `json:"password"`
}
