package ui

import "context"

type Interface interface {
	// GetSourcePath doit renvoyer le chemin d'un fichier média existant.
	// Implémentation terminale : priorité clipboard -> prompt
	GetSourcePath(ctx context.Context) (string, error)

	PrintInfo(ctx context.Context, s string)
	PrintWarn(ctx context.Context, s string)
	PrintError(ctx context.Context, s string)

	// ShowMarkdown affiche un document Markdown (rapport de run).
	ShowMarkdown(ctx context.Context, md []byte) error
}
