package convert

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync/atomic"
	"text/tabwriter"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"

	"retainformat/archive"
	"retainformat/common"
	"retainformat/config"
	"retainformat/format"
	"retainformat/preview"
	"retainformat/richtext"
	"retainformat/state"
	"retainformat/surface"
)

// documentFunc is called for every recognized document. See processDocument
// for meaning of src.
type documentFunc func(ctx context.Context, r io.Reader, src string, in common.InputFmt, enc srcEncoding) error

// documents counts documents read during the run, used to name debug report
// entries.
var documents atomic.Int64

// prepareEnv applies flags shared by detect and generate on top of
// configuration.
func prepareEnv(cmd *cli.Command, env *state.LocalEnv, log *zap.Logger) error {
	if err := env.ApplyDocumentConfig(); err != nil {
		return err
	}

	if t := cmd.String("theme"); len(t) > 0 {
		env.Theme = t
	}
	if _, ok := env.Cfg.Document.ThemeByName(env.Theme); !ok {
		return fmt.Errorf("unknown theme %q", env.Theme)
	}

	env.Input, env.InputForced = 0, false
	if from := cmd.String("from"); len(from) > 0 {
		in, err := common.ParseInputFmt(strings.ToLower(from))
		if err != nil {
			return fmt.Errorf("unknown input format %q: %w", from, err)
		}
		env.Input, env.InputForced = in, true
	}

	if cs := cmd.String("charset"); len(cs) > 0 {
		if err := env.ForceCharset(cs); err != nil {
			return err
		}
	}

	// Since zip "standard" does not define file name encoding we may need to
	// force archaic code page for old archives
	if cp := cmd.String("force-zip-cp"); len(cp) > 0 {
		enc, err := ianaindex.IANA.Encoding(cp)
		if err != nil || enc == nil {
			log.Warn("Unknown character set. Ignoring...", zap.String("charset", cp), zap.Error(err))
		} else {
			env.NamesCodePage = enc
			n, _ := ianaindex.IANA.Name(enc)
			log.Debug("Forcefully converting all non UTF-8 file names in archives", zap.String("charset", n))
		}
	}
	return nil
}

// Run is "generate" command: for every source document detects formats,
// assigns labels and writes tagged text.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("generate")

	src, dst, err := sourceAndDestination(cmd, true, log)
	if err != nil {
		return err
	}
	if err := prepareEnv(cmd, env, log); err != nil {
		return err
	}
	env.NoDirs, env.Overwrite, env.Preview = cmd.Bool("nodirs"), cmd.Bool("overwrite"), cmd.Bool("preview")

	// labels from command line are applied after configured ones, labels
	// file goes last
	flagLabels, err := parseLabelFlags(cmd.StringSlice("label"))
	if err != nil {
		return err
	}
	for id, l := range flagLabels {
		env.Labels[id] = l
	}
	if path := cmd.String("labels"); len(path) > 0 {
		fileLabels, err := loadLabelsFile(path)
		if err != nil {
			return err
		}
		for id, l := range fileLabels {
			env.Labels[id] = l
		}
		env.Rpt.Store("labels.yaml", path)
	}
	if len(env.Labels) == 0 {
		log.Warn("No labels were specified, output will be plain text")
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst), zap.String("theme", env.Theme))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, func(ctx context.Context, r io.Reader, src string, in common.InputFmt, enc srcEncoding) error {
		return generateDocument(ctx, r, src, in, enc, dst, log)
	}, log)
}

// Detect is "detect" command: prints formats found in every source
// document.
func Detect(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("detect")

	src, _, err := sourceAndDestination(cmd, false, log)
	if err != nil {
		return err
	}
	if err := prepareEnv(cmd, env, log); err != nil {
		return err
	}

	out := cmd.Root().Writer
	if out == nil {
		out = os.Stdout
	}
	return process(ctx, src, func(ctx context.Context, r io.Reader, src string, in common.InputFmt, enc srcEncoding) error {
		return detectDocument(ctx, r, src, in, enc, out, log)
	}, log)
}

func sourceAndDestination(cmd *cli.Command, withDst bool, log *zap.Logger) (src, dst string, err error) {
	src = cmd.Args().Get(0)
	if len(src) == 0 {
		return "", "", errors.New("no input source has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return "", "", err
	}
	if !withDst {
		if cmd.Args().Len() > 1 {
			log.Warn("Malformed command line, unexpected arguments", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
		}
		return src, "", nil
	}

	dst = cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return "", "", fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return "", "", err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}
	return src, dst, nil
}

// process determines the input type (directory, archive, or single file)
// and calls handle for every document found.
func process(ctx context.Context, src string, handle documentFunc, log *zap.Logger) error {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			if err := processDir(ctx, head, handle, log); err != nil {
				return fmt.Errorf("unable to process directory: %w", err)
			}
			break
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		isArchive, err := isArchiveFile(head)
		if err != nil {
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArchive {
			// we need to look inside to see if path makes sense
			tail = strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))
			if err := processArchive(ctx, head, filepath.ToSlash(tail), "", handle, log); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			break
		}

		if len(tail) != 0 {
			return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}
		doc, in, enc, err := isDocumentFile(head)
		if err != nil {
			return fmt.Errorf("unable to check file type: %w", err)
		}
		if !doc {
			return fmt.Errorf("input was not recognized as HTML or Markdown document (%s)", head)
		}
		file, err := os.Open(head)
		if err != nil {
			return fmt.Errorf("unable to open document: %w", err)
		}
		defer file.Close()
		if err := handle(ctx, selectReader(file, enc), filepath.Base(head), in, enc); err != nil {
			log.Error("Unable to process file", zap.String("file", head), zap.Error(err))
		}
		break
	}
	if len(head) == 0 {
		return fmt.Errorf("input source was not found (%s)", src)
	}
	return nil
}

// processDir walks directory tree finding documents and archives.
func processDir(ctx context.Context, dir string, handle documentFunc, log *zap.Logger) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("dir", dir))
		}
	}()

	return archive.WalkDir(dir, func(path string, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}

		isArchive, err := isArchiveFile(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if isArchive {
			rel := filepath.Dir(strings.TrimPrefix(path, dir))
			if err := processArchive(ctx, path, "", rel, handle, log); err != nil {
				log.Error("Unable to process archive", zap.String("file", path), zap.Error(err))
			}
			return nil
		}

		doc, in, enc, err := isDocumentFile(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if !doc {
			log.Debug("Skipping file, not recognized as document or archive", zap.String("file", path))
			return nil
		}

		count++

		file, err := os.Open(path)
		if err != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
			return nil
		}
		defer file.Close()

		src := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))
		if err := handle(ctx, selectReader(file, enc), src, in, enc); err != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
		}
		return nil
	})
}

// processArchive walks all files inside archive, finds documents under
// "pathIn" and processes them.
func processArchive(ctx context.Context, path, pathIn, pathOut string, handle documentFunc, log *zap.Logger) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("archive", path))
		}
	}()

	cp := state.EnvFromContext(ctx).NamesCodePage

	return archive.Walk(path, pathIn, func(name string, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		doc, in, enc, err := isDocumentInArchive(f)
		if err != nil {
			log.Warn("Skipping file in archive",
				zap.String("archive", name), zap.String("path", f.Name), zap.Error(err))
			return nil
		}
		if !doc {
			log.Debug("Skipping file, not recognized as document", zap.String("archive", name), zap.String("file", f.Name))
			return nil
		}

		count++

		r, err := f.Open()
		if err != nil {
			log.Error("Unable to process file in archive",
				zap.String("archive", name), zap.String("file", f.Name), zap.Error(err))
			return nil
		}
		defer r.Close()

		pathInArchive := f.Name
		if cp != nil && f.NonUTF8 {
			// forcing zip file name encoding
			if n, err := cp.NewDecoder().String(pathInArchive); err == nil {
				pathInArchive = n
			} else {
				n, _ = ianaindex.IANA.Name(cp)
				log.Warn("Unable to convert archive name from specified encoding",
					zap.String("charset", n), zap.String("path", pathInArchive), zap.Error(err))
			}
		}
		if err := handle(ctx, selectReader(r, enc), filepath.Join(pathOut, filepath.FromSlash(pathInArchive)), in, enc); err != nil {
			log.Error("Unable to process file in archive",
				zap.String("archive", name), zap.String("file", f.Name), zap.Error(err))
		}
		return nil
	})
}

// loadSurface reads document and places it onto surface with selected
// theme. "src" is part of the source path (always including file name)
// relative to the original path. When actual file was specified it will be
// just base file name without a path. When looking inside archive or
// directory it will be relative path inside archive or directory
// (including base file name).
func loadSurface(ctx context.Context, r io.Reader, src string, in common.InputFmt, enc srcEncoding, log *zap.Logger) (*surface.Surface, error) {
	env := state.EnvFromContext(ctx)

	tc, ok := env.Cfg.Document.ThemeByName(env.Theme)
	if !ok {
		return nil, fmt.Errorf("unknown theme %q", env.Theme)
	}
	theme := surface.ThemeFromConfig(env.Theme, tc)

	if env.InputForced {
		in = env.Input
	}
	opts := richtext.Options{
		Format:     in,
		CodePage:   env.CodePage,
		Sanitize:   env.Cfg.Document.Sanitize,
		Stylesheet: env.Stylesheet,
		Root:       theme.Root,
		Log:        log,
	}
	if enc != encUnknown {
		// selectReader already converted BOM marked input
		opts.CodePage = unicode.UTF8
	}

	doc, err := richtext.Read(r, opts)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s document (%s): %w", in, src, err)
	}
	if env.Rpt != nil {
		env.Rpt.StoreData(fmt.Sprintf("documents/%04d-%s.txt", documents.Add(1), config.CleanFileName(filepath.Base(src))), []byte(doc.String()))
	}
	return surface.New(doc, theme, log), nil
}

// generateDocument processes single document. "dst" is the destination
// directory where the result should be written.
func generateDocument(ctx context.Context, r io.Reader, src string, in common.InputFmt, enc srcEncoding, dst string, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)

	var outputName string

	log.Info("Generation starting", zap.String("from", src))
	defer func(start time.Time) {
		if r := recover(); r != nil {
			log.Error("Generation ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("generation panic: %v", r)
		} else {
			log.Info("Generation completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName))
		}
	}(time.Now())

	surf, err := loadSurface(ctx, r, src, in, enc, log)
	if err != nil {
		return err
	}

	set := surf.Detect()
	applied := applyLabels(set, env.Labels, log)
	log.Debug("Labels applied", zap.Int("detected", set.Len()), zap.Int("applied", applied))

	res := surf.Generate(set)
	if !res.Raw {
		if err := preview.CheckXML(res.Output); err != nil {
			log.Warn("Result will be rejected by XML consumers", zap.String("from", src), zap.Error(err))
		}
	}

	outputName = buildOutputPath(buildValues(config.OutputNameTemplateFieldName, src, in, env.Theme, set), src, dst, env)

	// Check if output file already exists
	if _, err := os.Stat(outputName); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	if err := os.WriteFile(outputName, []byte(res.Output), 0644); err != nil {
		return fmt.Errorf("unable to write result: %w", err)
	}

	if env.Preview {
		if err := preview.Console(os.Stdout, res.Output); err != nil {
			log.Warn("Unable to show preview", zap.Error(err))
		}
	}

	// Store result for debugging
	if err := env.Rpt.StoreCopy("results/"+filepath.Base(outputName), outputName); err != nil {
		log.Warn("Unable to store result in debug report", zap.Error(err))
	}
	return nil
}

// detectDocument prints table of formats detected in a single document.
func detectDocument(ctx context.Context, r io.Reader, src string, in common.InputFmt, enc srcEncoding, out io.Writer, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)

	surf, err := loadSurface(ctx, r, src, in, enc, log)
	if err != nil {
		return err
	}
	set := surf.Detect()
	applyLabels(set, env.Labels, log)
	return writeFormats(out, src, set)
}

func writeFormats(out io.Writer, src string, set *format.Set) error {
	if _, err := fmt.Fprintf(out, "%s:\n", src); err != nil {
		return err
	}
	if set.Empty() {
		_, err := fmt.Fprintf(out, "  %s\n\n", format.EmptyMessage)
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  ID\tNAME\tLABEL")
	for _, f := range set.Formats() {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", f.ID, f.DisplayName, f.UserLabel)
	}
	fmt.Fprintln(tw)
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("unable to write detected formats: %w", err)
	}
	return nil
}
