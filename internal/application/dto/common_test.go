package dto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/tienda-api/internal/application/dto"
)

func TestPageRequest_DefaultPage(t *testing.T) {
	cases := map[string]struct {
		in   dto.PageRequest
		want dto.PageRequest
	}{
		"vacía":           {dto.PageRequest{}, dto.PageRequest{Limit: 20}},
		"limit negativo":  {dto.PageRequest{Limit: -5, Offset: 3}, dto.PageRequest{Limit: 20, Offset: 3}},
		"limit excedido":  {dto.PageRequest{Limit: 500}, dto.PageRequest{Limit: dto.MaxPageLimit}},
		"offset negativo": {dto.PageRequest{Limit: 10, Offset: -1}, dto.PageRequest{Limit: 10}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			p := tc.in
			p.DefaultPage()
			assert.Equal(t, tc.want, p)
		})
	}
}

func TestNewPageResponse(t *testing.T) {
	r := dto.NewPageResponse(dto.PageRequest{Limit: 10, Offset: 20}, 3)
	assert.Equal(t, dto.PageResponse{Limit: 10, Offset: 20, Count: 3}, r)
}
