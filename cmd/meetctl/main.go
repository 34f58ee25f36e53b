package main

import (
	"context"
	"flag"
	"fmt"
	"meet-lab/captioning"
	"meet-lab/client"
	"meet-lab/domain/meeting"
	"meet-lab/infrastructure/http/api"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config is read from MEETCTL_* environment variables.
type Config struct {
	Addr     string        `envconfig:"ADDR" default:"http://localhost:8080"`
	LogLevel string        `envconfig:"LOG_LEVEL" default:"WARN"`
	Colours  bool          `envconfig:"COLOURS" default:"true"`
	Timeout  time.Duration `envconfig:"TIMEOUT" default:"10s"`
}

const usage = `usage: meetctl <command> [flags] [args]

commands:
  create   <host>                     create a meeting
  info     <id>                       show a meeting
  join     <id> <name>                join a meeting
  leave    <id> <name>                leave a meeting
  end      <id> <host>                end a meeting
  members  <id>                       list the members in join order
  devices  [-mic] [-camera] <id> <name>
  say      <id> <speaker> <text...>   append a caption
  tail     [-since N] [-name P] <id>  stream captions until the meeting ends or P leaves
  simulate [-interval D] [-count N] <id>
  search   [-limit N] <id> <query...>
`

type command func(ctx context.Context, c *client.Client, args []string) error

func main() {
	code, err := run(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, color.Red.Sprintf("meetctl: %v", err))
	}
	os.Exit(code)
}

func run(args []string) (int, error) {
	var config Config
	if err := envconfig.Process("meetctl", &config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if !config.Colours {
		color.Disable()
	}
	if len(args) == 0 {
		fmt.Print(usage)
		return exitConfig, nil
	}

	commands := map[string]command{
		"create":   create,
		"info":     info,
		"join":     join,
		"leave":    leave,
		"end":      end,
		"members":  members,
		"devices":  devices,
		"say":      say,
		"tail":     tail,
		"simulate": simulate,
		"search":   searchCaptions,
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Print(usage)
		return exitConfig, fmt.Errorf("unknown command %q", args[0])
	}

	log := logs.GetLoggerFromString(config.LogLevel)
	c := client.New(log, config.Addr, &http.Client{Timeout: config.Timeout})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd(ctx, c, args[1:]); err != nil {
		return exitRuntime, err
	}
	return exitOK, nil
}

func need(args []string, n int, names string) error {
	if len(args) < n {
		return fmt.Errorf("expected %s", names)
	}
	return nil
}

func create(ctx context.Context, c *client.Client, args []string) error {
	if err := need(args, 1, "<host>"); err != nil {
		return err
	}
	created, err := c.CreateMeeting(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Printf("Meeting %s created, hosted by %s\n", color.Green.Sprint(created.Meeting.ID), created.Host.Name)
	return nil
}

func info(ctx context.Context, c *client.Client, args []string) error {
	if err := need(args, 1, "<id>"); err != nil {
		return err
	}
	m, err := c.GetMeeting(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("%s  host=%s  state=%s  members=%d  captions=%d  since=%s\n",
		color.Green.Sprint(m.ID), m.HostName, m.State, m.Participants, m.LastSeq, m.CreatedAt.Format(time.RFC822))
	return nil
}

func join(ctx context.Context, c *client.Client, args []string) error {
	if err := need(args, 2, "<id> <name>"); err != nil {
		return err
	}
	joined, err := c.JoinMeeting(ctx, args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	fmt.Printf("%s joined as #%d\n", color.Green.Sprint(joined.Participant.Name), joined.Participant.Position)
	renderMembers(joined.Participants)
	return nil
}

func leave(ctx context.Context, c *client.Client, args []string) error {
	if err := need(args, 2, "<id> <name>"); err != nil {
		return err
	}
	if err := c.LeaveMeeting(ctx, args[0], strings.Join(args[1:], " ")); err != nil {
		return err
	}
	color.Yellow.Println("Left the meeting")
	return nil
}

func end(ctx context.Context, c *client.Client, args []string) error {
	if err := need(args, 2, "<id> <host>"); err != nil {
		return err
	}
	if err := c.EndMeeting(ctx, args[0], strings.Join(args[1:], " ")); err != nil {
		return err
	}
	color.Yellow.Printf("Meeting %s ended\n", args[0])
	return nil
}

func members(ctx context.Context, c *client.Client, args []string) error {
	if err := need(args, 1, "<id>"); err != nil {
		return err
	}
	participants, err := c.GetMembership(ctx, args[0])
	if err != nil {
		return err
	}
	renderMembers(participants)
	return nil
}

func devices(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("devices", flag.ContinueOnError)
	mic := fs.Bool("mic", false, "microphone on")
	camera := fs.Bool("camera", false, "camera on")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := need(fs.Args(), 2, "<id> <name>"); err != nil {
		return err
	}
	p, err := c.UpdateDevices(ctx, fs.Arg(0), strings.Join(fs.Args()[1:], " "), meeting.Devices{MicOn: *mic, CameraOn: *camera})
	if err != nil {
		return err
	}
	renderMembers([]api.Participant{p})
	return nil
}

func say(ctx context.Context, c *client.Client, args []string) error {
	if err := need(args, 3, "<id> <speaker> <text>"); err != nil {
		return err
	}
	caption, err := c.AppendCaption(ctx, args[0], args[1], strings.Join(args[2:], " "))
	if err != nil {
		return err
	}
	printCaption(api.FromCaption(caption))
	return nil
}

func tail(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("tail", flag.ContinueOnError)
	since := fs.Uint64("since", 0, "last sequence number already seen")
	name := fs.String("name", "", "stop when this participant leaves")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := need(fs.Args(), 1, "<id>"); err != nil {
		return err
	}
	last, err := c.TailAs(ctx, fs.Arg(0), *name, *since, func(caption api.Caption) error {
		printCaption(caption)
		return nil
	})
	if err != nil && ctx.Err() == nil {
		return err
	}
	color.Yellow.Printf("Stream closed at #%d\n", last)
	return nil
}

// simulate plays the captioning collaborator: canned phrases are spoken by the
// current members, never twice in a row by the same one.
func simulate(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("simulate", flag.ContinueOnError)
	interval := fs.Duration("interval", 2*time.Second, "delay between two captions")
	count := fs.Int("count", 10, "number of captions, 0 runs until interrupted")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := need(fs.Args(), 1, "<id>"); err != nil {
		return err
	}
	meetingID := fs.Arg(0)

	speakers := func() []string {
		lookupCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		participants, err := c.GetMembership(lookupCtx, meetingID)
		if err != nil {
			return nil
		}
		return lo.Map(participants, func(p api.Participant, _ int) string { return p.Name })
	}
	source := captioning.NewSimulatedSource(speakers, *interval, *count, nil)
	pump := captioning.NewPump(logs.GetLoggerFromString("WARN"), source, c, meetingID).
		OnCaption(func(caption meeting.CaptionEvent) { printCaption(api.FromCaption(caption)) })

	if err := pump.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func searchCaptions(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "maximum number of captions")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := need(fs.Args(), 2, "<id> <query>"); err != nil {
		return err
	}
	captions, err := c.SearchCaptions(ctx, fs.Arg(0), strings.Join(fs.Args()[1:], " "), *limit)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Seq", "At", "Speaker", "Lang", "Text"})
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	for _, caption := range captions {
		table.Append([]string{
			fmt.Sprint(caption.Seq),
			caption.At.Format("15:04:05"),
			caption.Speaker,
			caption.Lang,
			caption.Text,
		})
	}
	table.Render()
	return nil
}

func renderMembers(participants []api.Participant) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"#", "Name", "Host", "Mic", "Camera", "Joined"})
	table.SetBorder(false)
	for _, p := range participants {
		table.Append([]string{
			fmt.Sprint(p.Position),
			p.Name,
			onOff(p.IsHost, "host", ""),
			onOff(p.MicOn, "on", "off"),
			onOff(p.CameraOn, "on", "off"),
			p.JoinedAt.Format("15:04:05"),
		})
	}
	table.Render()
}

func onOff(v bool, on, off string) string {
	if v {
		return on
	}
	return off
}

func printCaption(caption api.Caption) {
	speaker := color.Cyan.Sprint(caption.Speaker)
	if caption.Speaker == meeting.SystemSpeaker {
		speaker = color.Gray.Sprint(caption.Speaker)
	}
	fmt.Printf("%s #%-4d %s: %s\n", caption.At.Format("15:04:05"), caption.Seq, speaker, caption.Text)
}
