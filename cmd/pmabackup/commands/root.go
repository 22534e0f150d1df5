package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"pmabackup/lib/scrapers/phpmyadmin"
	"pmabackup/lib/telemetry"

	"github.com/spf13/cobra"
)

var (
	outputDirectory   string
	prependDate       bool
	prefixFormat      string
	excludeDbs        string
	serverName        string
	compression       string
	basename          string
	timeoutSeconds    int
	overwriteExisting bool
	dryRun            bool
	httpAuth          string
)

var rootCmd = &cobra.Command{
	Use:   "pmabackup <url> <username> <password>",
	Short: "pmabackup automates the download of SQL dump backups via a phpMyAdmin web interface.",
	Args:  cobra.ExactArgs(3),
	Run:   runBackup,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&outputDirectory, "output-directory", "o", ".", "output directory for the SQL dump file")
	flags.BoolVarP(&prependDate, "prepend-date", "p", false, "prepend the current UTC date & time to the filename")
	flags.StringVar(&prefixFormat, "prefix-format", "", fmt.Sprintf("strftime format of the --prepend-date prefix (default %q)", phpmyadmin.DefaultPrefixFormat))
	flags.StringVarP(&excludeDbs, "exclude-dbs", "e", "", "comma-separated list of database names to exclude from the dump")
	flags.StringVar(&compression, "compression", "none", "compression method for the output file, one of none, zip, gzip (must be supported by the server)")
	flags.StringVar(&basename, "basename", "", `basename (without extension) of the dump file instead of the server-suggested one; an empty basename "" is valid together with --prepend-date`)
	flags.BoolVar(&overwriteExisting, "overwrite-existing", false, "overwrite existing dump files instead of appending a number to the name")
	flags.BoolVar(&dryRun, "dry-run", false, "do not actually download any file")

	persistent := rootCmd.PersistentFlags()
	persistent.IntVar(&timeoutSeconds, "timeout", 60, "timeout in seconds applied to every request")
	persistent.StringVar(&httpAuth, "http-auth", "", `basic HTTP authentication in "user:password" format`)
	persistent.StringVarP(&serverName, "server-name", "s", "", "server hostname to supply if enabled as a field on the login page")
}

func ExecuteContext(ctx context.Context) {
	tel, err := telemetry.SetupFromEnv(ctx, "pmabackup")
	if err != nil {
		slog.Warn("failed to set up telemetry", "err", err)
	}
	defer tel.Shutdown(ctx)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	os.Exit(1)
}

// invalid option combinations are rejected before any network traffic
func invalidArguments(message string) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", message)
	os.Exit(2)
}

func newClient(loginUrl string) *phpmyadmin.Client {
	client, err := phpmyadmin.NewClient(phpmyadmin.ClientOptions{
		LoginUrl:  loginUrl,
		Timeout:   time.Duration(timeoutSeconds) * time.Second,
		BasicAuth: httpAuth,
	})
	if err != nil {
		fatal(err)
	}
	return client
}

func splitExcludes(list string) []string {
	if list == "" {
		return nil
	}
	return strings.Split(list, ",")
}

func runBackup(cmd *cobra.Command, args []string) {
	if prefixFormat != "" && !prependDate {
		invalidArguments("--prefix-format given without --prepend-date")
	}
	comp, err := phpmyadmin.ParseCompression(compression)
	if err != nil {
		invalidArguments(err.Error())
	}

	client := newClient(args[0])
	path, err := client.DownloadBackup(cmd.Context(), phpmyadmin.BackupOptions{
		Username:         args[1],
		Password:         args[2],
		ServerName:       serverName,
		ExcludeDatabases: splitExcludes(excludeDbs),
		Compression:      comp,
		Output: phpmyadmin.OutputOptions{
			Directory:    outputDirectory,
			Basename:     basename,
			HasBasename:  cmd.Flags().Changed("basename"),
			PrependDate:  prependDate,
			PrefixFormat: prefixFormat,
			Overwrite:    overwriteExisting,
		},
		DryRun: dryRun,
	})
	if err != nil {
		fatal(err)
	}

	if dryRun {
		fmt.Printf("Would have saved SQL dump to: %s\n", path)
	} else {
		fmt.Printf("Successfully saved SQL dump to: %s\n", path)
	}
}
