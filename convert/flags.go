package convert

import (
	"strings"

	cli "github.com/urfave/cli/v3"

	"retainformat/common"
)

// sourceFlags are shared by detect and generate commands.
func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "theme", Usage: "surface `THEME` to use for baseline (overrides configuration)"},
		&cli.StringFlag{Name: "from",
			Usage: "treat all inputs as `TYPE` regardless of file extensions (supported types: " + strings.Join(common.InputFmtNames(), ", ") + ")"},
		&cli.StringFlag{Name: "charset", Usage: "force `ENCODING` of document content (see IANA.org for character set names)"},
		&cli.StringFlag{Name: "force-zip-cp",
			Usage: "Force `ENCODING` for ALL non UTF-8 file names in processed archives (see IANA.org for character set names)"},
	}
}

// DetectFlags returns flags of detect command.
func DetectFlags() []cli.Flag {
	return sourceFlags()
}

// GenerateFlags returns flags of generate command.
func GenerateFlags() []cli.Flag {
	return append(sourceFlags(),
		&cli.StringSliceFlag{Name: "label", Aliases: []string{"l"}, Usage: "assign label to detected format, `ID=LABEL` (could be repeated)"},
		&cli.StringFlag{Name: "labels", Usage: "read labels from YAML `FILE` (map of format ids to labels)"},
		&cli.BoolFlag{Name: "nodirs", Aliases: []string{"nd"}, Usage: "when producing output do not keep input directory structure"},
		&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "continue even if destination exits, overwrite files"},
		&cli.BoolFlag{Name: "preview", Aliases: []string{"p"}, Usage: "print highlighted result to the console"},
	)
}
