package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"portfolio_gallery/internal/domain/models"
	galleryview "portfolio_gallery/internal/services/gallery_view"
	"portfolio_gallery/internal/services/sweeper"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

var (
	errUsage   = errors.New("bad usage, see galleryctl -h")
	errMissing = errors.New("image not found")
)

type cli struct {
	out     io.Writer
	in      io.Reader
	ctrl    *galleryview.Controller
	sweeper *sweeper.Sweeper
}

func (c *cli) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "list":
		return c.list(ctx)
	case "upload":
		return c.upload(ctx, args)
	case "edit":
		return c.edit(ctx, args)
	case "delete":
		return c.delete(ctx, args)
	case "sweep":
		return c.sweep(ctx)
	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
}

func (c *cli) list(ctx context.Context) error {
	if err := c.ctrl.Load(ctx); err != nil {
		return err
	}

	images := c.ctrl.Snapshot().Images
	if len(images) == 0 {
		color.New(color.FgYellow).Fprintln(c.out, "no images yet")
		return nil
	}

	bold := color.New(color.Bold).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, bold("ID")+"\t"+bold("TITLE")+"\t"+bold("FILE")+"\t"+bold("CREATED"))
	for _, img := range images {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			img.ID,
			img.Title,
			faint(img.FileName),
			img.CreatedAt.Local().Format("2006-01-02 15:04"),
		)
	}

	return w.Flush()
}

func (c *cli) upload(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	title := fs.String("title", "", "image title")
	description := fs.String("description", "", "image description")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return errUsage
	}

	file, err := localFile(fs.Arg(0))
	if err != nil {
		return err
	}

	c.ctrl.BeginUpload()
	c.ctrl.ChangeUploadField(galleryview.FieldTitle, *title)
	c.ctrl.ChangeUploadField(galleryview.FieldDescription, *description)

	if err := c.ctrl.SelectFile(file); err != nil {
		return err
	}

	if err := c.ctrl.SubmitUpload(ctx); err != nil {
		c.printMessage()
		return err
	}

	c.printMessage()

	if images := c.ctrl.Snapshot().Images; len(images) > 0 {
		fmt.Fprintln(c.out, images[0].URL)
	}

	return nil
}

func (c *cli) edit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	title := fs.String("title", "", "new title")
	description := fs.String("description", "", "new description")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return errUsage
	}

	image, err := c.find(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	if !c.ctrl.BeginEdit(image) {
		return errMissing
	}

	// only flags given on the command line change a field
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			c.ctrl.ChangeEditField(galleryview.FieldTitle, *title)
		case "description":
			c.ctrl.ChangeEditField(galleryview.FieldDescription, *description)
		}
	})

	if err := c.ctrl.SaveEdit(ctx); err != nil {
		c.printMessage()
		return err
	}

	color.New(color.FgGreen).Fprintln(c.out, "image updated")

	return nil
}

func (c *cli) delete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	yes := fs.Bool("yes", false, "do not ask for confirmation")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return errUsage
	}

	image, err := c.find(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	c.ctrl.RequestDelete(image.ID)

	if !*yes && !c.confirm(fmt.Sprintf("delete %q (%s)?", image.Title, image.FileName)) {
		c.ctrl.CancelDelete()
		color.New(color.FgYellow).Fprintln(c.out, "cancelled")
		return nil
	}

	if err := c.ctrl.ConfirmDelete(ctx); err != nil {
		c.printMessage()
		return err
	}

	color.New(color.FgGreen).Fprintln(c.out, "image deleted")

	return nil
}

func (c *cli) sweep(ctx context.Context) error {
	report, err := c.sweeper.Sweep(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "scanned %d, removed %s, dangling rows %d, failed %s\n",
		report.Scanned,
		color.GreenString("%d", report.Removed),
		report.DanglingRows,
		color.RedString("%d", report.Failed),
	)

	return nil
}

func (c *cli) find(ctx context.Context, rawID string) (models.GalleryImage, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return models.GalleryImage{}, fmt.Errorf("invalid id %q: %w", rawID, err)
	}

	if err := c.ctrl.Load(ctx); err != nil {
		return models.GalleryImage{}, err
	}

	for _, img := range c.ctrl.Snapshot().Images {
		if img.ID == id {
			return img, nil
		}
	}

	return models.GalleryImage{}, fmt.Errorf("%s: %w", id, errMissing)
}

func (c *cli) confirm(question string) bool {
	fmt.Fprintf(c.out, "%s [y/N] ", question)

	answer, _ := bufio.NewReader(c.in).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))

	return answer == "y" || answer == "yes"
}

func (c *cli) printMessage() {
	msg := c.ctrl.Snapshot().Message
	if msg == nil {
		return
	}

	if msg.Kind == galleryview.MessageError {
		color.New(color.FgRed).Fprintln(c.out, msg.Text)
		return
	}
	color.New(color.FgGreen).Fprintln(c.out, msg.Text)
}

// localFile describes a file on disk. The content type is left empty so it
// gets sniffed from the bytes.
func localFile(path string) (models.ImageFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return models.ImageFile{}, err
	}
	if info.IsDir() {
		return models.ImageFile{}, fmt.Errorf("%s is a directory", path)
	}

	return models.ImageFile{
		Name: filepath.Base(path),
		Size: info.Size(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}
