// Command spirit plays the spirits' side of a board through the REST API.
// It either spells a fixed answer or wanders through legal letters at random,
// then says goodbye.
//
//	spirit --url http://localhost:8080 --channel general --question "Who is there?" --answer "a cat"
//	spirit --channel general --wander --min-letters 6
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/askouija/game/dictionary"
	"github.com/wricardo/askouija/game/service"
)

// Client calls the Ask Ouija REST API
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, errResp.Error)
		}
		return fmt.Errorf("%s %s failed: %s", method, path, resp.Status)
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}

func boardPath(channelID, suffix string) string {
	return "/api/boards/" + url.PathEscape(channelID) + suffix
}

func (c *Client) Ask(ctx context.Context, channelID, question, dict string) (*service.BoardInfo, error) {
	body := map[string]string{"channel_id": channelID, "question": question}
	if dict != "" {
		body["dictionary"] = dict
	}
	var info service.BoardInfo
	if err := c.do(ctx, http.MethodPost, "/api/boards", body, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) GetBoard(ctx context.Context, channelID string) (*service.BoardInfo, error) {
	var info service.BoardInfo
	if err := c.do(ctx, http.MethodGet, boardPath(channelID, ""), nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) Hints(ctx context.Context, channelID string) ([]string, error) {
	var resp struct {
		Letters []string `json:"letters"`
	}
	if err := c.do(ctx, http.MethodGet, boardPath(channelID, "/hints"), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Letters, nil
}

func (c *Client) Tell(ctx context.Context, channelID, letter string) (*service.TellResult, error) {
	var result service.TellResult
	if err := c.do(ctx, http.MethodPost, boardPath(channelID, "/letters"), map[string]string{"letter": letter}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Goodbye(ctx context.Context, channelID string) (*service.GoodbyeResult, error) {
	var result service.GoodbyeResult
	if err := c.do(ctx, http.MethodPost, boardPath(channelID, "/goodbye"), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Strategy picks the next letter; "" means stop and say goodbye.
type Strategy interface {
	Next(legal []string, atBoundary bool) string
}

// SpellStrategy spells a fixed answer, ignoring anything that is not a letter.
type SpellStrategy struct {
	letters []byte
	pos     int
}

func NewSpellStrategy(answer string) *SpellStrategy {
	s := &SpellStrategy{}
	for i := 0; i < len(answer); i++ {
		if dictionary.IsLetter(answer[i]) {
			s.letters = append(s.letters, dictionary.FoldByte(answer[i]))
		}
	}
	return s
}

func (s *SpellStrategy) Next(legal []string, atBoundary bool) string {
	if s.pos >= len(s.letters) {
		return ""
	}
	letter := string(s.letters[s.pos])
	s.pos++
	return letter
}

// WanderStrategy picks random legal letters until it has written at least
// minLetters and the message splits into words.
type WanderStrategy struct {
	rng        *rand.Rand
	minLetters int
	written    int
}

func NewWanderStrategy(minLetters int, seed uint64) *WanderStrategy {
	return &WanderStrategy{
		rng:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		minLetters: minLetters,
	}
}

func (s *WanderStrategy) Next(legal []string, atBoundary bool) string {
	if (s.written >= s.minLetters && atBoundary) || len(legal) == 0 {
		return ""
	}
	s.written++
	return legal[s.rng.IntN(len(legal))]
}

// play drives one board until the strategy stops or maxLetters is reached,
// then says goodbye.
func play(ctx context.Context, c *Client, channelID string, strategy Strategy, maxLetters int) (*service.GoodbyeResult, error) {
	board, err := c.GetBoard(ctx, channelID)
	if err != nil {
		return nil, err
	}

	for n := 0; n < maxLetters; n++ {
		legal, err := c.Hints(ctx, channelID)
		if err != nil {
			return nil, err
		}

		letter := strategy.Next(legal, board.State.AtBoundary)
		if letter == "" {
			break
		}

		res, err := c.Tell(ctx, channelID, letter)
		if err != nil {
			return nil, err
		}
		if !res.Accepted {
			return nil, fmt.Errorf("letter %s refused: %s", letter, res.Message)
		}
		board = res.Board
		log.Debug().Str("channel", channelID).Str("letter", letter).Str("message", board.State.Message).Msg("letter accepted")
	}

	return c.Goodbye(ctx, channelID)
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "spirit",
		Usage: "Answer a board through the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Ask Ouija server URL", Sources: cli.EnvVars("ASKOUIJA_API_URL")},
			&cli.StringFlag{Name: "channel", Value: "general", Usage: "Channel to answer on"},
			&cli.StringFlag{Name: "question", Usage: "Open the board with this question first"},
			&cli.StringFlag{Name: "dictionary", Usage: "Dictionary for a new board"},
			&cli.StringFlag{Name: "answer", Usage: "Answer to spell"},
			&cli.BoolFlag{Name: "wander", Usage: "Spell random legal letters instead of an answer"},
			&cli.IntFlag{Name: "min-letters", Value: 5, Usage: "Letters to write before a wandering goodbye"},
			&cli.IntFlag{Name: "max-letters", Value: 200, Usage: "Give up after this many letters"},
			&cli.BoolFlag{Name: "v", Usage: "Verbose output"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			if cmd.Bool("v") {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}

			client := NewClient(cmd.String("url"))
			channelID := cmd.String("channel")

			if q := cmd.String("question"); q != "" {
				board, err := client.Ask(ctx, channelID, q, cmd.String("dictionary"))
				if err != nil {
					return err
				}
				log.Info().Str("channel", board.ChannelID).Str("board", board.ID).Msg("board opened")
			}

			var strategy Strategy
			switch {
			case cmd.Bool("wander"):
				strategy = NewWanderStrategy(int(cmd.Int("min-letters")), uint64(time.Now().UnixNano()))
			case cmd.String("answer") != "":
				strategy = NewSpellStrategy(cmd.String("answer"))
			default:
				return fmt.Errorf("either --answer or --wander is required")
			}

			result, err := play(ctx, client, channelID, strategy, int(cmd.Int("max-letters")))
			if err != nil {
				return err
			}
			if !result.Done {
				return fmt.Errorf("goodbye refused: %s", result.Message)
			}

			fmt.Println(result.Message)
			return nil
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("spirit failed")
	}
}
