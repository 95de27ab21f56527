package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/patrickprogramme/dubsync/internal/clipboard"
)

const defaultWordWrap = 100

var (
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#93C5FD"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FBBF24")).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171")).Bold(true)
	promptView = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).Italic(true)
)

type terminalUI struct {
	reader *bufio.Reader
	out    io.Writer
	errOut io.Writer

	// readClipboard est remplacé dans les tests
	readClipboard func() (string, bool)
	wordWrap      int
}

func NewTerminal() Interface {
	return newTerminal(os.Stdin, os.Stdout, os.Stderr)
}

func newTerminal(in io.Reader, out, errOut io.Writer) *terminalUI {
	return &terminalUI{
		reader:        bufio.NewReader(in),
		out:           out,
		errOut:        errOut,
		readClipboard: clipboard.ReadFilePath,
		wordWrap:      defaultWordWrap,
	}
}

func (t *terminalUI) GetSourcePath(ctx context.Context) (string, error) {
	// 1) clipboard
	if p, ok := t.readClipboard(); ok {
		t.PrintInfo(ctx, fmt.Sprintf("Utilisation du fichier depuis le presse-papier: %s", p))
		return p, nil
	}
	// 2) prompt
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		fmt.Fprint(t.out, promptView.Render("Entrez le chemin de la vidéo source: "))
		input, err := t.reader.ReadString('\n')
		if p, ok := clipboard.ExistingFile(input); ok {
			return p, nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", fmt.Errorf("aucun fichier source fourni")
			}
			return "", fmt.Errorf("lecture stdin: %w", err)
		}
		t.PrintError(ctx, "❌ Fichier introuvable. Essayez à nouveau.")
	}
}

func (t *terminalUI) PrintInfo(ctx context.Context, s string) {
	fmt.Fprintln(t.out, infoStyle.Render(s))
}

func (t *terminalUI) PrintWarn(ctx context.Context, s string) {
	fmt.Fprintln(t.errOut, warnStyle.Render("⚠️  "+s))
}

func (t *terminalUI) PrintError(ctx context.Context, s string) {
	fmt.Fprintln(t.errOut, errorStyle.Render(s))
}

func (t *terminalUI) ShowMarkdown(ctx context.Context, md []byte) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(t.wordWrap),
	)
	if err != nil {
		return fmt.Errorf("glamour renderer: %w", err)
	}
	out, err := r.RenderBytes(stripFrontmatter(md))
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	_, err = t.out.Write(out)
	return err
}

// stripFrontmatter retire le bloc YAML "---" de tête, inutile à l'écran.
func stripFrontmatter(md []byte) []byte {
	s := string(md)
	if !strings.HasPrefix(s, "---\n") {
		return md
	}
	end := strings.Index(s[4:], "\n---\n")
	if end < 0 {
		return md
	}
	return []byte(strings.TrimLeft(s[4+end+5:], "\n"))
}
