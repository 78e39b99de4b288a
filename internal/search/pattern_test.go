package search

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildImportPattern_MatchesImportForms(t *testing.T) {
	t.Parallel()

	deps := []string{"d", "lodash", "lodash.merge", "@vue/reactivity", "core-js", "react-dom"}
	forms := []string{
		`require('%s')`,
		`require ( "%s" ) ;`,
		`const x = require('%s');`,
		`import x from '%s'`,
		`import x from "%s";`,
		`import type x from '%s'`,
		`import type { X, Y } from '%s';`,
		`import * as ns from '%s'`,
		`import React, { useState } from '%s'`,
		`export { a } from '%s'`,
		`import '%s'`,
		`import "%s";`,
		`import('%s')`,
		`await import ( '%s' )`,
		`import(/* webpackChunkName: "x" */ '%s')`,
		`import(/*webpackChunkName:'chunk-1'*/"%s")`,
	}

	for _, dep := range deps {
		re := regexp.MustCompile(BuildImportPattern(dep))
		for _, form := range forms {
			line := fmt.Sprintf(form, dep)
			assert.True(t, re.MatchString(line), "pattern for %q should match %q", dep, line)
		}
	}
}

func TestBuildImportPattern_NoSubstringMatches(t *testing.T) {
	t.Parallel()

	re := regexp.MustCompile(BuildImportPattern("d"))

	lines := []string{
		`require('d-other')`,
		`import x from 'dd'`,
		`import x from 'ad'`,
		`import x from '@scope/d'`,
		`import 'd.js'`,
		`require('d")`,
		`const d = 'd'`,
		`reimport 'd'`,
		`myrequire('d')`,
		`reexport { a } from 'd'`,
		`dynamicimport('d')`,
	}
	for _, line := range lines {
		assert.False(t, re.MatchString(line), "should not match %q", line)
	}

	dotted := regexp.MustCompile(BuildImportPattern("lodash.merge"))
	assert.False(t, dotted.MatchString(`import x from 'lodashxmerge'`))
}

func TestBuildImportPattern_TypesAliasing(t *testing.T) {
	t.Parallel()

	re := regexp.MustCompile(BuildImportPattern("@types/foo"))
	assert.True(t, re.MatchString(`import x from 'foo'`))
	assert.False(t, re.MatchString(`import x from '@types/foo'`))
	assert.Equal(t, BuildImportPattern("foo"), BuildImportPattern("@types/foo"))
}

func TestBuildImportPattern_Subpaths(t *testing.T) {
	t.Parallel()

	re := regexp.MustCompile(BuildImportPattern("d"))
	assert.True(t, re.MatchString(`import x from 'd/sub/path'`))
	assert.True(t, re.MatchString(`require('d/sub/path?raw')`))
	assert.True(t, re.MatchString(`import styles from 'd/dist/style.css?inline'`))

	scoped := regexp.MustCompile(BuildImportPattern("@scope/pkg"))
	assert.True(t, scoped.MatchString(`import { a } from '@scope/pkg/sub'`))
	assert.False(t, scoped.MatchString(`import { a } from '@scope/pkg-extra'`))
}

func TestAnchoredPattern_ExtractsStatementAtColumn(t *testing.T) {
	t.Parallel()

	re, err := compileAnchored(BuildImportPattern("lodash"))
	require.NoError(t, err)

	line := `const _ = require('lodash'); // utils`
	assert.Empty(t, re.FindString(line), "anchor must apply to every alternative")
	assert.Equal(t, `require('lodash');`, re.FindString(line[10:]))

	assert.Equal(t, `import { pick } from 'lodash';`, re.FindString(`import { pick } from 'lodash';`))
	assert.Equal(t, `import type { PickFn } from 'lodash';`, re.FindString(`import type { PickFn } from 'lodash';`))
}

func TestPackageNameFromModulePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		modulePath string
		want       string
	}{
		{"lodash", "lodash"},
		{"lodash/fp", "lodash"},
		{"@vue/reactivity", "@vue/reactivity"},
		{"@vue/reactivity/dist/x.js", "@vue/reactivity"},
		{"@scope", "@scope"},
		{"/abs/path", ""},
	}

	for _, tt := range tests {
		t.Run(tt.modulePath, func(t *testing.T) {
			assert.Equal(t, tt.want, PackageNameFromModulePath(tt.modulePath))
		})
	}
}

func TestUsedDependenciesPattern_Compiles(t *testing.T) {
	t.Parallel()

	re := regexp.MustCompile(usedDependenciesPattern)
	assert.True(t, re.MatchString(`import 'core-js/stable'`))
	assert.True(t, re.MatchString(`import { a } from "@scope/pkg"`))
	assert.True(t, re.MatchString(`const fs = require( 'fs' )`))
	assert.False(t, re.MatchString(`import x from './local'`))
	assert.False(t, re.MatchString(`myrequire('lodash')`))
}
