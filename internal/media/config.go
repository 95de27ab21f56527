package media

// FFmpegConfig représente les flags globaux et les codecs utilisés pour chaque appel ffmpeg.
type FFmpegConfig struct {
	Overwrite  bool // -y : les sorties sont des fichiers temporaires déjà réservés
	HideBanner bool
	NoStdin    bool // évite qu'ffmpeg attende une entrée clavier
	LogLevel   string

	VideoCodec string // ré-encodage des découpes et étirements vidéo
	AudioCodec string // codec audio de la vidéo finale (concat)
	SampleRate int    // fréquence des composites et de la sortie, 0 : 48 kHz
}

// NewFFmpegConfig initialise une configuration standard, showOutput vient du yaml de config.
func NewFFmpegConfig(showOutput bool, videoCodec, audioCodec string, sampleRate int) *FFmpegConfig {
	level := "error"
	if showOutput {
		level = "info"
	}
	if videoCodec == "" {
		videoCodec = "libx264"
	}
	if audioCodec == "" {
		audioCodec = "aac"
	}
	return &FFmpegConfig{
		Overwrite:  true,
		HideBanner: true,
		NoStdin:    true,
		LogLevel:   level,
		VideoCodec: videoCodec,
		AudioCodec: audioCodec,
		SampleRate: sampleRate,
	}
}

// BuildArgs préfixe les arguments d'une opération par les flags globaux.
func (c *FFmpegConfig) BuildArgs(op ...string) []string {
	args := make([]string, 0, len(op)+6)
	if c.HideBanner {
		args = append(args, "-hide_banner")
	}
	if c.LogLevel != "" {
		args = append(args, "-loglevel", c.LogLevel)
	}
	if c.NoStdin {
		args = append(args, "-nostdin")
	}
	if c.Overwrite {
		args = append(args, "-y")
	}
	return append(args, op...)
}
