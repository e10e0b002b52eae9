package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"hanzi_backend/internal/feature/recognition/domain"
	"hanzi_backend/internal/feature/recognition/domain/entity"
	"hanzi_backend/internal/feature/recognition/domain/viewstate"
	"hanzi_backend/internal/feature/recognition/usecase"
)

var identifyCmd = &cobra.Command{
	Use:   "identify <photo>",
	Short: "Name the subject of a photo in Chinese",
	Long: `Recognize a photo and print each character with its pinyin.

With --text the printed Chinese in the photo is read instead.
With --save-audio the pronunciation of each character and of the
whole word is written as MP3 files to the given directory.

Example:
  hanzi identify apple.jpg
  hanzi identify sign.png --text --save-audio ./audio`,
	Args: cobra.ExactArgs(1),
	RunE: runIdentify,
}

func init() {
	rootCmd.AddCommand(identifyCmd)
	identifyCmd.Flags().Bool("text", false, "read printed text instead of naming the subject")
	identifyCmd.Flags().String("save-audio", "", "directory to write pronunciation MP3 files to")
}

func runIdentify(cmd *cobra.Command, args []string) error {
	textMode, _ := cmd.Flags().GetBool("text")
	audioDir, _ := cmd.Flags().GetString("save-audio")

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading photo: %w", err)
	}

	app, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	st := app.Flow.Status(ctx)
	if textMode && !st.TextEnabled {
		return errors.New("text reading is disabled; set HANZI_VISION_ENABLED=true")
	}

	m := viewstate.New()
	if m.Start(st.Ready || textMode) == viewstate.Settings {
		fmt.Fprintln(cmd.ErrOrStderr(), "No recognition backend is configured.")
		fmt.Fprintln(cmd.ErrOrStderr(), "Set GEMINI_API_KEY or run 'hanzi settings --use-custom ...'.")
		return usecase.Translate(domain.ErrNotConfigured)
	}

	img, err := app.Snapshotter.Snapshot(data)
	if err != nil {
		return fmt.Errorf("preparing photo: %w", err)
	}

	if err := m.BeginCapture(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "[%s] recognizing via %s...\n", m.View(), routeLabel(st.Route, textMode))

	run := app.Flow.Recognize
	if textMode {
		run = app.Flow.ReadText
	}
	out, err := run(ctx, img)
	if err != nil {
		_ = m.Fail(err.Error())
		fmt.Fprintf(cmd.ErrOrStderr(), "[%s] %s\n", m.View(), m.Message())
		return err
	}
	_ = m.Succeed()

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "[%s] %s\n", m.View(), out.Word)
	for _, c := range out.Characters {
		fmt.Fprintf(w, "  %s  %s\n", c.Character, c.Pinyin)
	}
	if out.ID != nil {
		fmt.Fprintf(w, "saved to history as %s\n", out.ID)
	}

	if audioDir != "" {
		return saveAudio(cmd, app.Pronunciation, audioDir, out.Characters)
	}
	return nil
}

type pronouncer interface {
	Pronounce(ctx context.Context, text string) ([]byte, error)
}

// saveAudio writes one MP3 per character plus one for the whole word.
func saveAudio(cmd *cobra.Command, p pronouncer, dir string, chars []entity.CharacterInfo) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating audio directory: %w", err)
	}
	texts := make([]string, 0, len(chars)+1)
	for _, c := range chars {
		texts = append(texts, c.Character)
	}
	if len(chars) > 1 {
		texts = append(texts, entity.Word(chars))
	}

	var errs []error
	for _, t := range texts {
		path, err := audioPath(dir, t)
		if err != nil {
			slog.Warn("音声ファイル名に使えない文字列をスキップ", "text", t)
			errs = append(errs, err)
			continue
		}
		dat, err := p.Pronounce(cmd.Context(), t)
		if err != nil {
			slog.Warn("音声の取得に失敗", "text", t, "error", err)
			errs = append(errs, err)
			continue
		}
		if err := os.WriteFile(path, dat, 0o644); err != nil {
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	}
	return errors.Join(errs...)
}

// audioPath は dir 直下の "<text>.mp3" を返します。dir の外や隠しファイルを指す名前は拒否します。
func audioPath(dir, text string) (string, error) {
	if text == "" || strings.HasPrefix(text, ".") || strings.ContainsAny(text, `/\:`+"\x00") {
		return "", fmt.Errorf("unsafe audio file name %q", text)
	}
	path := filepath.Join(dir, text+".mp3")
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel != text+".mp3" {
		return "", fmt.Errorf("unsafe audio file name %q", text)
	}
	return path, nil
}

func routeLabel(r entity.Route, textMode bool) string {
	if textMode {
		return string(entity.RouteText)
	}
	return string(r)
}
