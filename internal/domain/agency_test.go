package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validAgency() *Agency {
	return &Agency{
		ID:               1,
		Name:             "RoRo's Rocket Chips",
		ContactEmail:     "hello@roro.com",
		WebAddress:       "http://roro.com",
		ShortDescription: "The fieriest chips known to man.",
		Established:      "2019",
	}
}

func TestAgencyValidate(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(a *Agency)
		wantFields []string
	}{
		{
			name:   "valid agency",
			mutate: func(a *Agency) {},
		},
		{
			name:       "blank name",
			mutate:     func(a *Agency) { a.Name = "" },
			wantFields: []string{"name"},
		},
		{
			name:       "invalid email",
			mutate:     func(a *Agency) { a.ContactEmail = "not-an-email" },
			wantFields: []string{"contact_email"},
		},
		{
			name: "several violations at once",
			mutate: func(a *Agency) {
				a.ContactEmail = ""
				a.WebAddress = ""
			},
			wantFields: []string{"contact_email", "web_address"},
		},
		{
			name:       "established longer than a year",
			mutate:     func(a *Agency) { a.Established = "19945" },
			wantFields: []string{"established"},
		},
		{
			name:       "established must be digits",
			mutate:     func(a *Agency) { a.Established = "c.19" },
			wantFields: []string{"established"},
		},
		{
			name:   "established may be empty",
			mutate: func(a *Agency) { a.Established = "" },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := validAgency()
			tc.mutate(a)

			err := a.Validate()
			if len(tc.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, AgencyType, verr.Type)

			var fields []string
			for _, f := range verr.Fields {
				fields = append(fields, f.Field)
			}
			assert.Equal(t, tc.wantFields, fields)
		})
	}
}

func TestAgencyKeyAndLinks(t *testing.T) {
	a := validAgency()
	a.ID = 42
	assert.Equal(t, "42", a.Key())
	assert.False(t, a.IsNew())
	assert.True(t, (&Agency{}).IsNew())

	a.Services = []*Service{{ID: 3, Slug: "seo"}, {ID: 1, Slug: "ppc"}}
	assert.Equal(t, []int64{3, 1}, a.ServiceIDs())
	assert.True(t, a.HasService(3))
	assert.False(t, a.HasService(2))
}

func TestValidationErrorMessage(t *testing.T) {
	a := validAgency()
	a.Name = ""
	a.ContactEmail = "nope"

	err := a.Validate()
	require.Error(t, err)
	assert.Equal(t,
		"name: This value should not be blank.\ncontact_email: This value is not a valid email address.",
		err.Error())
}

func TestMergeValidationErrors(t *testing.T) {
	assert.Nil(t, MergeValidationErrors(nil, &ValidationError{}))

	first := &ValidationError{Type: AgencyType}
	first.Add("name", "blank")
	second := &ValidationError{Type: AgencyType}
	second.Add("web_address", UniqueMessage)

	merged := MergeValidationErrors(first, nil, second)
	require.NotNil(t, merged)
	assert.Len(t, merged.Fields, 2)
	assert.Equal(t, "web_address", merged.Fields[1].Field)
}
