package contentsource

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celnetamit/hlwp/internal/domain"
)

func TestListParams_Validate(t *testing.T) {
	valid := ListParams{Page: 1, PerPage: 10}
	valid.Normalize()
	require.NoError(t, valid.Validate())
	assert.Equal(t, OrderByDate, valid.OrderBy)
	assert.Equal(t, OrderDesc, valid.Order)

	tests := []struct {
		name   string
		modify func(*ListParams)
		field  string
	}{
		{name: "page zero", modify: func(p *ListParams) { p.Page = 0 }, field: "page"},
		{name: "per page zero", modify: func(p *ListParams) { p.PerPage = 0 }, field: "per_page"},
		{name: "per page too large", modify: func(p *ListParams) { p.PerPage = 101 }, field: "per_page"},
		{name: "bad sort key", modify: func(p *ListParams) { p.OrderBy = "relevance" }, field: "orderby"},
		{name: "bad order", modify: func(p *ListParams) { p.Order = "up" }, field: "order"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.modify(&p)
			err := p.Validate()
			require.Error(t, err)

			var vErr *domain.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.field, vErr.Field)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestEmptyResult(t *testing.T) {
	cause := errors.New("connection refused")
	res := EmptyResult(cause)

	assert.NotNil(t, res.Articles)
	assert.Empty(t, res.Articles)
	assert.Equal(t, 0, res.Total)
	assert.Equal(t, 1, res.TotalPages)
	assert.True(t, res.Degraded())
	assert.Same(t, cause, res.BackendErr)
}
