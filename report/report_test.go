package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComma(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{0, "0"},
		{123, "123"},
		{1234, "1,234"},
		{1234567, "1,234,567"},
		{3000000000, "3,000,000,000"},
		{-1234, "-1,234"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, Comma(tc.input))
	}
}

func TestFloat(t *testing.T) {
	tests := []struct {
		value    float64
		decimals int
		expected string
	}{
		{50, 1, "50.0"},
		{1234.56, 1, "1,234.6"},
		{1234.56, 0, "1,235"},
		{0.5, 2, "0.50"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, Float(tc.value, tc.decimals))
	}
}

func TestListDirNewFiles(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0644)
	if err != nil {
		t.Fatal(err)
	}

	before := ListDir(dir)
	if len(before) != 1 || before[0] != "a.txt" {
		t.Error("problem with ListDir", before)
	}

	// NewFiles only prints, but must not choke on a vanished directory
	NewFiles(filepath.Join(dir, "missing"), before)
}
