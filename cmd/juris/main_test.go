package main

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/juris/core"
)

func TestReembedCommandFlags(t *testing.T) {
	app := &cli.App{
		Name: "juris",
		Commands: []*cli.Command{
			{
				Name:   "reembed",
				Action: reembedCommand,
				Flags: append(storeFlags(),
					&cli.StringFlag{
						Name:  "embedding-host",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Value: 100,
					},
				),
			},
		},
	}

	t.Run("embedding-model is required", func(t *testing.T) {
		err := app.Run([]string{"juris", "reembed", "--db", "/tmp/test"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "embedding-model")
	})

	t.Run("db is required", func(t *testing.T) {
		err := app.Run([]string{"juris", "reembed", "--embedding-model", "test-model"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db")
	})

	t.Run("embedding-host has default value", func(t *testing.T) {
		cmd := app.Commands[0]
		var hostFlag *cli.StringFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == "embedding-host" {
				hostFlag = f
				break
			}
		}
		require.NotNil(t, hostFlag)
		assert.Equal(t, "http://localhost:11434/v1", hostFlag.Value)
	})
}

func TestHintParsing(t *testing.T) {
	t.Run("depth hints", func(t *testing.T) {
		hint, err := parseDepthHint("shallow")
		require.NoError(t, err)
		assert.Equal(t, core.DepthHintShallow, hint)

		hint, err = parseDepthHint("AUTO")
		require.NoError(t, err)
		assert.Equal(t, core.DepthHintAuto, hint)

		_, err = parseDepthHint("bogus")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid depth hint")
	})

	t.Run("temporal hints", func(t *testing.T) {
		hint, err := parseTemporalHint("historical")
		require.NoError(t, err)
		assert.Equal(t, core.TemporalHistorical, hint)

		_, err = parseTemporalHint("yesterday")
		require.Error(t, err)
	})

	t.Run("intents", func(t *testing.T) {
		intent, err := parseIntent("deep_dive")
		require.NoError(t, err)
		assert.Equal(t, core.IntentDeepDive, intent)

		_, err = parseIntent("browse")
		require.Error(t, err)
	})
}

func TestReadDocuments(t *testing.T) {
	t.Run("parses JSONL with paths and aliases", func(t *testing.T) {
		input := `{"title":"Smith v. Jones","contents":"opinion text","jurisdiction":"US/TX","practice_area":"litigation/commercial","decided_at":"2020-06-01T00:00:00Z"}

{"title":"Roe v. Doe","contents":"other text","jurisdiction":"canada/ontario"}
`
		docs, err := readDocuments("test.jsonl", bufio.NewScanner(strings.NewReader(input)))
		require.NoError(t, err)
		require.Len(t, docs, 2)

		assert.Equal(t, "united_states/texas", docs[0].Jurisdiction.String())
		assert.Equal(t, "litigation/commercial", docs[0].PracticeArea.String())
		assert.Equal(t, 2020, docs[0].DecidedAt.Year())
		assert.Equal(t, "canada/ontario", docs[1].Jurisdiction.String())
	})

	t.Run("reports line numbers for bad JSON", func(t *testing.T) {
		input := "{\"title\":\"ok\",\"contents\":\"x\"}\nnot json\n"
		_, err := readDocuments("test.jsonl", bufio.NewScanner(strings.NewReader(input)))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "test.jsonl:2")
	})

	t.Run("rejects malformed paths", func(t *testing.T) {
		input := `{"title":"bad","contents":"x","jurisdiction":"united_states//texas"}`
		_, err := readDocuments("test.jsonl", bufio.NewScanner(strings.NewReader(input)))
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrMalformedPath)
	})

	t.Run("rejects bad timestamps", func(t *testing.T) {
		input := `{"title":"bad","contents":"x","decided_at":"June 1 2020"}`
		_, err := readDocuments("test.jsonl", bufio.NewScanner(strings.NewReader(input)))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decided_at")
	})
}

func TestSetupLogger(t *testing.T) {
	newApp := func() *cli.App {
		return &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "log-level",
					Aliases: []string{"l"},
					Value:   "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error { return nil },
		}
	}

	t.Run("valid log levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error"} {
			t.Run(level, func(t *testing.T) {
				err := newApp().Run([]string{"test", "--log-level", level})
				require.NoError(t, err)
			})
		}
	})

	t.Run("case insensitive", func(t *testing.T) {
		err := newApp().Run([]string{"test", "--log-level", "WaRn"})
		require.NoError(t, err)
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		err := newApp().Run([]string{"test", "--log-level", "invalid"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("log-level flag has alias -l", func(t *testing.T) {
		err := newApp().Run([]string{"test", "-l", "debug"})
		require.NoError(t, err)
	})
}
