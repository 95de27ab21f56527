package model

import "errors"

// Taxonomie des erreurs du moteur de resynchronisation.
var (
	// ErrInvalidSegmentOrder : transcript mal formé (non trié, chevauchement, start >= end).
	// Fatal pour le run.
	ErrInvalidSegmentOrder = errors.New("invalid segment order")

	// ErrInvalidDuration : durée de clip nulle ou négative. Fatal pour le clip concerné.
	ErrInvalidDuration = errors.New("invalid duration")

	// ErrMissingArtifact : fichier attendu absent au moment du merge. Fatal pour le run.
	ErrMissingArtifact = errors.New("missing artifact")

	// ErrBoundaryOverrun : fin de segment au-delà de la durée totale.
	// Jamais retournée comme erreur fatale, seulement portée par les avertissements.
	ErrBoundaryOverrun = errors.New("boundary overrun")

	// ErrInvalidTranslation : mise à jour de traduction refusée (mauvais nombre de lignes, langue en double...).
	ErrInvalidTranslation = errors.New("invalid translation update")
)
