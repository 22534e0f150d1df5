package phpmyadmin

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

// Compression selects the server-side compression of the dump download.
// The console must support the chosen method.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionZip  Compression = "zip"
	CompressionGzip Compression = "gzip"
)

// ParseCompression validates a user-supplied compression name.
func ParseCompression(s string) (Compression, error) {
	switch Compression(s) {
	case CompressionNone, CompressionZip, CompressionGzip:
		return Compression(s), nil
	}
	return "", fmt.Errorf("unknown compression %q, expected none, zip or gzip", s)
}

var contentDispositionRe = regexp.MustCompile(`filename="([^"]+)"`)

const downloadChunkSize = 8192

type BackupOptions struct {
	Username string
	Password string
	// ServerName fills the server choice field shown on multi-server login
	// pages.
	ServerName string
	// ExcludeDatabases are dropped from the export selection. Excluding
	// everything still submits the export, the server may produce a
	// structure-only dump.
	ExcludeDatabases []string
	Compression      Compression
	Output           OutputOptions
	// DryRun resolves the output path without downloading anything.
	DryRun bool
}

// DownloadBackup runs the full login → export discovery → download
// workflow against the console and returns the path of the saved dump, or
// the would-be path on a dry run. The workflow is strictly sequential, a
// failed run is simply a failed run: there are no retries and a partially
// written file is left in place.
func (c *Client) DownloadBackup(ctx context.Context, opts BackupOptions) (string, error) {
	ctx, span := tracer.Start(ctx, "client:DownloadBackup")
	defer span.End()

	doc, err := c.login(ctx, opts)
	if err != nil {
		span.SetStatus(codes.Error, "login failed")
		return "", err
	}

	exportLink, err := FindExportLink(doc)
	if err != nil {
		span.SetStatus(codes.Error, "export link not found")
		return "", fmt.Errorf("discover export page: %w", err)
	}
	exportDoc, err := c.GetPage(ctx, exportLink)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch export page")
		return "", fmt.Errorf("fetch export page: %w", err)
	}

	form, fields, err := buildExportRequest(exportDoc, opts)
	if err != nil {
		span.SetStatus(codes.Error, "failed to build export request")
		return "", fmt.Errorf("build export request: %w", err)
	}

	res, err := c.PostFormStream(ctx, form.Action, fields)
	if err != nil {
		span.SetStatus(codes.Error, "failed to submit export form")
		return "", fmt.Errorf("submit export form: %w", err)
	}
	defer res.RawBody().Close()

	header := res.Header().Get("Content-Disposition")
	match := contentDispositionRe.FindStringSubmatch(header)
	if match == nil {
		span.SetStatus(codes.Error, "no filename in content-disposition")
		return "", &FilenameError{Header: header}
	}
	suggested := match[1]

	path := ResolveOutputPath(suggested, time.Now().UTC(), opts.Output)
	if opts.DryRun {
		slog.Info("dry run, skipping download", "path", path)
		return path, nil
	}

	if err := writeStream(path, res.RawBody()); err != nil {
		span.SetStatus(codes.Error, "failed to save dump")
		return "", fmt.Errorf("save dump to %s: %w", path, err)
	}
	return path, nil
}

// ListDatabases logs in and returns the database names the console offers
// for export.
func (c *Client) ListDatabases(ctx context.Context, opts BackupOptions) ([]string, error) {
	ctx, span := tracer.Start(ctx, "client:ListDatabases")
	defer span.End()

	doc, err := c.login(ctx, opts)
	if err != nil {
		span.SetStatus(codes.Error, "login failed")
		return nil, err
	}

	exportLink, err := FindExportLink(doc)
	if err != nil {
		return nil, fmt.Errorf("discover export page: %w", err)
	}
	exportDoc, err := c.GetPage(ctx, exportLink)
	if err != nil {
		return nil, fmt.Errorf("fetch export page: %w", err)
	}

	dbs, err := AvailableDatabases(exportDoc)
	if err != nil {
		return nil, fmt.Errorf("list databases: %w", err)
	}
	return dbs, nil
}

// login fetches the login page, submits credentials merged with the login
// form's hidden fields and returns the post-login document once the
// authenticated-navigation markers are present.
func (c *Client) login(ctx context.Context, opts BackupOptions) (*goquery.Document, error) {
	ctx, span := tracer.Start(ctx, "client:login")
	defer span.End()

	doc, err := c.GetPage(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("fetch login page: %w", err)
	}

	form, err := FindLoginForm(doc)
	if err != nil {
		return nil, fmt.Errorf("locate login form: %w", err)
	}

	fields := url.Values{}
	fields.Set("pma_username", opts.Username)
	fields.Set("pma_password", opts.Password)
	if opts.ServerName != "" {
		fields.Set("pma_servername", opts.ServerName)
	}
	for name, value := range form.Fields {
		fields.Set(name, value)
	}

	// an empty form action posts back to the login url itself
	loggedIn, err := c.PostForm(ctx, form.Action, fields)
	if err != nil {
		return nil, fmt.Errorf("submit credentials: %w", err)
	}

	if !IsAuthenticated(loggedIn) {
		span.SetStatus(codes.Error, "post-login markers absent")
		return nil, &AuthenticationError{Reason: "please check your credentials"}
	}
	return loggedIn, nil
}

// buildExportRequest merges the dump form's hidden fields with the fixed
// export parameters and the database selection. Hidden fields win on
// collision, the server knows its own token names best.
func buildExportRequest(doc *goquery.Document, opts BackupOptions) (FormDescriptor, url.Values, error) {
	form, err := FindExportForm(doc)
	if err != nil {
		return FormDescriptor{}, nil, err
	}

	available, err := AvailableDatabases(doc)
	if err != nil {
		return FormDescriptor{}, nil, err
	}
	selected := make([]string, 0, len(available))
	for _, db := range available {
		if !slices.Contains(opts.ExcludeDatabases, db) {
			selected = append(selected, db)
		}
	}
	if len(selected) == 0 {
		slog.Warn("no databases to dump", "available", strings.Join(available, ", "))
	}

	compression := opts.Compression
	if compression == "" {
		compression = CompressionNone
	}

	fields := url.Values{}
	fields["db_select[]"] = selected
	fields.Set("compression", string(compression))
	fields.Set("what", "sql")
	fields.Set("filename_template", "@SERVER@")
	fields.Set("sql_structure_or_data", "structure_and_data")
	for name, value := range form.Fields {
		fields.Set(name, value)
	}

	return form, fields, nil
}

// writeStream copies the response body to path in fixed-size chunks so a
// dump never has to fit in memory. On a mid-copy failure the file is
// closed and the partial contents are left in place for the operator to
// inspect.
func writeStream(path string, body io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	_, err = io.CopyBuffer(f, body, make([]byte, downloadChunkSize))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
