package application_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rios0rios0/terradex/application"
)

func TestDescribeModule(t *testing.T) {
	t.Parallel()

	t.Run("should prefer readme paragraph over comment block", func(t *testing.T) {
		t.Parallel()

		// given
		readme := "# VPC Module\n\nCreates a VPC with public and private subnets.\n\nMore details below."
		mainSource := "# A comment synopsis\nresource \"aws_vpc\" \"this\" {}"

		// when
		result := application.DescribeModule(readme, mainSource)

		// then
		assert.Equal(t, "Creates a VPC with public and private subnets.", result)
	})

	t.Run("should fall back to leading comment block of main file", func(t *testing.T) {
		t.Parallel()

		// given
		readme := ""
		mainSource := "# Provisions the shared network layer.\nresource \"aws_vpc\" \"this\" {}"

		// when
		result := application.DescribeModule(readme, mainSource)

		// then
		assert.Equal(t, "Provisions the shared network layer.", result)
	})

	t.Run("should return empty when both sources are empty", func(t *testing.T) {
		t.Parallel()

		// when
		result := application.DescribeModule("", "")

		// then
		assert.Empty(t, result)
	})
}

func TestFirstParagraph(t *testing.T) {
	t.Parallel()

	t.Run("should join a multi-line paragraph into one line", func(t *testing.T) {
		t.Parallel()

		// given
		markdown := "# Title\n\nFirst line of the paragraph\ncontinues on a second line.\n\nNext paragraph."

		// when
		result := application.FirstParagraph(markdown)

		// then
		assert.Equal(t, "First line of the paragraph continues on a second line.", result)
	})

	t.Run("should skip badges and horizontal rules", func(t *testing.T) {
		t.Parallel()

		// given
		markdown := "[![build](https://img.example.com/badge.svg)](https://ci.example.com)\n---\nActual description here."

		// when
		result := application.FirstParagraph(markdown)

		// then
		assert.Equal(t, "Actual description here.", result)
	})

	t.Run("should return empty for heading-only content", func(t *testing.T) {
		t.Parallel()

		// given
		markdown := "# Only\n## Headings\n"

		// when
		result := application.FirstParagraph(markdown)

		// then
		assert.Empty(t, result)
	})
}

func TestLeadingCommentBlock(t *testing.T) {
	t.Parallel()

	t.Run("should collect hash comments at the top", func(t *testing.T) {
		t.Parallel()

		// given
		source := "# Shared network layer.\n# Owned by the platform team.\nresource \"aws_vpc\" \"this\" {}"

		// when
		result := application.LeadingCommentBlock(source)

		// then
		assert.Equal(t, "Shared network layer. Owned by the platform team.", result)
	})

	t.Run("should collect slash comments at the top", func(t *testing.T) {
		t.Parallel()

		// given
		source := "// Storage layer module.\nresource \"aws_s3_bucket\" \"this\" {}"

		// when
		result := application.LeadingCommentBlock(source)

		// then
		assert.Equal(t, "Storage layer module.", result)
	})

	t.Run("should stop at the first blank line after comments", func(t *testing.T) {
		t.Parallel()

		// given
		source := "# Synopsis only.\n\n# Not part of the synopsis.\nresource \"x\" \"y\" {}"

		// when
		result := application.LeadingCommentBlock(source)

		// then
		assert.Equal(t, "Synopsis only.", result)
	})

	t.Run("should return empty when file starts with code", func(t *testing.T) {
		t.Parallel()

		// given
		source := "resource \"aws_vpc\" \"this\" {}\n# trailing comment"

		// when
		result := application.LeadingCommentBlock(source)

		// then
		assert.Empty(t, result)
	})
}
