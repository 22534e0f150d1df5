package phpmyadmin

import (
	"strings"
	"testing"

	_ "embed"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/login_page.html
var loginPageHtml string

//go:embed testdata/main_page.html
var mainPageHtml string

//go:embed testdata/main_page_legacy.html
var mainPageLegacyHtml string

//go:embed testdata/export_page.html
var exportPageHtml string

//go:embed testdata/bare_page.html
var barePageHtml string

func parseDoc(t *testing.T, page string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)
	return doc
}

func TestFindLoginForm(t *testing.T) {
	form, err := FindLoginForm(parseDoc(t, loginPageHtml))
	require.NoError(t, err)

	require.Equal(t, "index.php", form.Action)
	// hidden fields only, a value-less input maps to the empty string
	require.Equal(t, map[string]string{
		"set_session": "8e2cd4b87ff62dc19a3b4ef339b4a6c1",
		"token":       "3c6e1a9dd4b87ff6",
		"target":      "",
	}, form.Fields)
}

func TestFindLoginFormMissing(t *testing.T) {
	_, err := FindLoginForm(parseDoc(t, barePageHtml))

	var notFound *MarkupNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "login form", notFound.What)
}

func TestIsAuthenticated(t *testing.T) {
	cases := []struct {
		name   string
		page   string
		expect bool
	}{
		{name: "route style main page", page: mainPageHtml, expect: true},
		{name: "legacy main page", page: mainPageLegacyHtml, expect: true},
		{name: "login page", page: loginPageHtml, expect: false},
		{name: "page without links of interest", page: barePageHtml, expect: false},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expect, IsAuthenticated(parseDoc(t, test.page)))
		})
	}
}

func TestFindExportLink(t *testing.T) {
	link, err := FindExportLink(parseDoc(t, mainPageHtml))
	require.NoError(t, err)
	require.Equal(t, "index.php?route=/server/export&server=1", link)

	link, err = FindExportLink(parseDoc(t, mainPageLegacyHtml))
	require.NoError(t, err)
	require.Equal(t, "server_export.php?server=1", link)
}

func TestFindExportLinkMissing(t *testing.T) {
	_, err := FindExportLink(parseDoc(t, loginPageHtml))

	var notFound *MarkupNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "export link", notFound.What)
}

func TestAvailableDatabases(t *testing.T) {
	dbs, err := AvailableDatabases(parseDoc(t, exportPageHtml))
	require.NoError(t, err)
	require.Equal(t, []string{"shop", "logs", "staging"}, dbs)
}

func TestAvailableDatabasesMissingControl(t *testing.T) {
	_, err := AvailableDatabases(parseDoc(t, mainPageHtml))

	var notFound *MarkupNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "database list", notFound.What)
}

func TestFindExportForm(t *testing.T) {
	form, err := FindExportForm(parseDoc(t, exportPageHtml))
	require.NoError(t, err)

	require.Equal(t, "index.php?route=/export&server=1", form.Action)
	require.Equal(t, map[string]string{
		"token":         "3c6e1a9dd4b87ff6",
		"export_method": "quick",
		"template_id":   "",
	}, form.Fields)
}

func TestFindExportFormMissing(t *testing.T) {
	_, err := FindExportForm(parseDoc(t, loginPageHtml))

	var notFound *MarkupNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "export form", notFound.What)
}
