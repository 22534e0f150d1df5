package phpmyadmin

import (
	"strings"

	"pmabackup/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// FormDescriptor is a form's action url together with its hidden fields.
type FormDescriptor struct {
	Action string
	Fields map[string]string
}

// substrings of hrefs that only show up in the navigation of a logged-in
// console
var authMarkers = []string{
	"frame_content",
	"server_export.php",
	"index.php?route=/server/export",
}

// the server export page link, legacy path style and modern route style
const (
	legacyExportMarker = "server_export.php"
	routeExportMarker  = "index.php?route=/server/export"
)

func hiddenFields(form *goquery.Selection) map[string]string {
	fields := map[string]string{}
	form.Find("input[type='hidden']").Each(func(_ int, input *goquery.Selection) {
		name, ok := input.Attr("name")
		if !ok || name == "" {
			return
		}
		fields[name] = input.AttrOr("value", "")
	})
	return fields
}

// FindLoginForm locates the login form and collects its hidden fields. A
// missing action is allowed, some console versions post back to the login
// url itself.
func FindLoginForm(doc *goquery.Document) (FormDescriptor, error) {
	form := doc.Find("form#login_form")
	if form.Length() == 0 {
		return FormDescriptor{}, &MarkupNotFoundError{What: "login form"}
	}
	return FormDescriptor{
		Action: form.AttrOr("action", ""),
		Fields: hiddenFields(form),
	}, nil
}

// IsAuthenticated reports whether the page looks like a logged-in console.
// This is a substring heuristic over the page's links, nothing stronger:
// if the console's navigation markup changes it will misreport.
func IsAuthenticated(doc *goquery.Document) bool {
	anchors := htmlutil.GetAnchors(doc.Find("a"))
	for _, marker := range authMarkers {
		for _, anchor := range anchors {
			if strings.Contains(anchor.Href, marker) {
				return true
			}
		}
	}
	return false
}

// FindExportLink finds the server export page link in the top menu, trying
// the legacy path style first and the modern route style second.
func FindExportLink(doc *goquery.Document) (string, error) {
	nav := doc.Find("#topmenu")
	for _, marker := range []string{legacyExportMarker, routeExportMarker} {
		link := ""
		nav.Find("a").EachWithBreak(func(_ int, anchor *goquery.Selection) bool {
			href := anchor.AttrOr("href", "")
			if strings.Contains(href, marker) {
				link = href
				return false
			}
			return true
		})
		if link != "" {
			return link, nil
		}
	}
	return "", &MarkupNotFoundError{What: "export link"}
}

// AvailableDatabases returns the database names offered by the export
// page's multi-select, in document order. A select with no options yields
// an empty list, which is not an error here: the caller decides whether an
// empty dump is acceptable.
func AvailableDatabases(doc *goquery.Document) ([]string, error) {
	control := doc.Find("select[name='db_select[]']")
	if control.Length() == 0 {
		return nil, &MarkupNotFoundError{What: "database list"}
	}

	var dbs []string
	seen := map[string]bool{}
	control.Find("option").Each(func(_ int, opt *goquery.Selection) {
		value, ok := opt.Attr("value")
		if !ok || seen[value] {
			return
		}
		seen[value] = true
		dbs = append(dbs, value)
	})
	return dbs, nil
}

// FindExportForm locates the dump form and collects its hidden fields.
// Unlike the login form, the dump form must carry an action to be
// submittable.
func FindExportForm(doc *goquery.Document) (FormDescriptor, error) {
	form := doc.Find("form[name='dump']")
	if form.Length() == 0 {
		return FormDescriptor{}, &MarkupNotFoundError{What: "export form"}
	}
	action, ok := form.Attr("action")
	if !ok || action == "" {
		return FormDescriptor{}, &MarkupNotFoundError{What: "export form action"}
	}
	return FormDescriptor{
		Action: action,
		Fields: hiddenFields(form),
	}, nil
}
