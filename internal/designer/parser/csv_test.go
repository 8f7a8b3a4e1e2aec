package parser

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = "Type,X1,Y1,Z1,X2,Y2,Z2,Name\r\n" +
	"reference1,0,0,0,,,,REF1\r\n" +
	"reference2,1000,0,0,,,,REF2\r\n" +
	"point,1000,0,2400,,,,Downlight#1\r\n" +
	"\r\n" +
	"linear,0,0,2400,1000,0,2400,Cove (north)\r\n" +
	"switch,500,0,1200,,,,Entry\r\n"

func TestParseCSV(t *testing.T) {
	export, err := ParseCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, "REF1", export.Ref1.Name)
	assert.Equal(t, 1000.0, export.Ref2.Start.X)
	require.Len(t, export.Points, 1)
	require.Len(t, export.Linears, 1)
	require.Len(t, export.Switches, 1)
	assert.Equal(t, 3, export.Len())

	p := export.Points[0]
	assert.Equal(t, TypePoint, p.Type)
	assert.Equal(t, 4, p.Line)
	assert.Equal(t, "Downlight#1", p.Name)
	assert.Equal(t, 2400.0, p.Start.Z)
	assert.True(t, math.IsNaN(p.End.X))

	l := export.Linears[0]
	assert.Equal(t, 1000.0, l.End.X)
	assert.Equal(t, "Cove (north)", l.Name)

	assert.Equal(t, "Entry", export.Switches[0].Name)
	assert.Empty(t, export.Warnings)
}

func TestParseCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{
			name:  "no references",
			input: "Type,X1,Y1,Z1,X2,Y2,Z2,Name\npoint,1,2,3,,,,A\n",
			want:  ErrMissingReference,
		},
		{
			name:  "missing second reference",
			input: "reference1,0,0,0,,,,REF1\n",
			want:  ErrMissingReference,
		},
		{
			name:  "duplicate reference",
			input: "reference1,0,0,0,,,,REF1\nreference1,5,5,0,,,,REF1\nreference2,1,1,0,,,,REF2\n",
			want:  ErrDuplicateReference,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseCSV_Permissive(t *testing.T) {
	input := "reference1,0,0,0,,,,R1\n" +
		"reference2,10,0,0,,,,R2\n" +
		"point,abc,5,0,,,,Broken\n" +
		"spot,1,1,1,,,,Unknown\n" +
		"switch,1,1\n"

	export, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, export.Points, 1)
	assert.True(t, math.IsNaN(export.Points[0].Start.X))
	assert.Equal(t, 5.0, export.Points[0].Start.Y)

	require.Len(t, export.Switches, 1)
	assert.Equal(t, "", export.Switches[0].Name)
	assert.True(t, math.IsNaN(export.Switches[0].Start.Z))

	require.Len(t, export.Warnings, 1)
	assert.Contains(t, export.Warnings[0], `"spot"`)
}
