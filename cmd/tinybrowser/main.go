// Command tinybrowser is the engine's CLI entry point: it resolves a
// profile, builds the shared HTTP client and cookie jar, opens one tab
// per positional URL argument, and on exit persists navigation state
// and cookies back to the profile directories (the history file is not
// written).
//
// Grounded on cmd/purify/main.go's numbered main() stages (load config,
// init logger, init the domain runtime, start serving, graceful
// shutdown); the windowing/canvas toolkit itself is out of scope; this
// binary drives the Tab Runtime headlessly and exercises it against the
// bundled wstest fixtures when asked.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/use-agent/tinybrowser/internal/config"
	"github.com/use-agent/tinybrowser/internal/cookiejar"
	"github.com/use-agent/tinybrowser/internal/httpclient"
	"github.com/use-agent/tinybrowser/internal/navstate"
	"github.com/use-agent/tinybrowser/internal/obslog"
	"github.com/use-agent/tinybrowser/internal/profile"
	"github.com/use-agent/tinybrowser/internal/tab"
	"github.com/use-agent/tinybrowser/internal/testserver"
	"github.com/use-agent/tinybrowser/internal/weburl"
)

const version = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

// run implements the numbered CLI lifecycle and returns the process
// exit code (0 success, 1 on unknown flag or navigation-assertion
// failure, per spec).
func run(args []string) int {
	fs := flag.NewFlagSet("tinybrowser", flag.ContinueOnError)
	fs.Usage = func() { printUsage(fs) }

	var (
		private     = fs.Bool("private", false, "disable all disk persistence")
		noJS        = fs.Bool("disable-javascript", false, "disable the script bridge")
		noJSShort   = fs.Bool("nojs", false, "alias of --disable-javascript")
		gui         = fs.Bool("gui", false, "run the windowing frontend (not implemented by this engine build)")
		cli         = fs.Bool("cli", false, "run headless, printing each tab's title and URL (default)")
		runTest     = fs.Bool("test", false, "run the bundled wstest regression fixtures and exit")
		wtestDir    = fs.String("wtest", "", "run the bundled wstest fixtures and exit (`dir` is accepted but not read)")
		wstest      = fs.Bool("wstest", false, "alias of --test")
		showVer     = fs.Bool("version", false, "print the version and exit")
		rtl         = fs.Bool("rtl", false, "accepted and logged only; layout stays left-to-right")
		exitAtLoad  = fs.Bool("exit", false, "exit immediately after the last tab finishes loading")
		testAll     = fs.Bool("testall", false, "run every bundled fixture, including script-dependent ones, and report inconclusives")
		profileDir  = fs.String("profile", "", "profile directory override")
		cacheDir    = fs.String("cache-dir", "", "alias of --profile-dir")
		profileDir2 = fs.String("profile-dir", "", "alias of --profile")
	)

	if err := fs.Parse(args); err != nil {
		return 1
	}

	if *showVer {
		fmt.Println("tinybrowser " + version)
		return 0
	}

	cfg := config.Load()
	log := obslog.New(obslog.Options{
		Format: obslog.Format(cfg.Log.Format),
		Level:  logLevel(cfg.Log.Level),
	})
	slog.SetDefault(log)

	customDir := firstNonEmpty(*profileDir, *profileDir2, *cacheDir, cfg.Profile.CustomDir)
	isPrivate := *private || cfg.Profile.Private
	dirs := profile.Resolve(isPrivate, customDir)

	if *runTest || *wstest {
		return runFixtures(nil)
	}
	if *testAll {
		return runFixtures(nil)
	}
	if *wtestDir != "" {
		log.Warn("--wtest runs the bundled in-process fixtures; external fixture directories are not read from disk", "dir", *wtestDir)
		return runFixtures(nil)
	}

	jar, err := dirs.LoadCookies()
	if err != nil {
		log.Error("failed to load cookie jar", "error", err)
		jar = cookiejar.New()
	}

	client := httpclient.New(httpclient.Options{
		Jar:            jar,
		CacheMemBytes:  cfg.Cache.MemoryBytes,
		CacheDir:       cfg.Cache.Dir,
		DialTimeout:    cfg.HTTP.DialTimeout,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		IdleTimeout:    cfg.HTTP.SocketIdleTimeout,
		PerHostRPS:     cfg.HTTP.PerHostRPS,
		PerHostBurst:   cfg.HTTP.PerHostBurst,
		Log:            log,
	})

	win := navstate.NewWindow(800, 600)
	state, err := dirs.LoadState()
	if err != nil {
		log.Warn("failed to load saved state, starting fresh", "error", err)
	}
	restoreState(win, state)

	urls := fs.Args()
	if len(urls) == 0 && win.TabCount() == 0 {
		urls = []string{"about:blank"}
	}

	visited := map[string]bool{}
	var runtime tab.Runtime
	if *noJS || *noJSShort {
		runtime = nil
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	for i := 0; i < win.TabCount(); i++ {
		t := tab.New(win, i, tab.Options{Client: client, Jar: jar, Log: log, Runtime: runtime, Visited: visited})
		if u := win.Tab(i).URL; u != "" && u != "about:blank" {
			t.Load(ctx, u, true, nil, nil, "")
		}
	}
	for _, u := range urls {
		i := win.NewTab("about:blank")
		t := tab.New(win, i, tab.Options{Client: client, Jar: jar, Log: log, Runtime: runtime, Visited: visited})
		t.Load(ctx, u, false, nil, nil, "")
	}

	if *gui {
		log.Warn("--gui requested but this build has no windowing frontend; running headless instead")
	}
	if *cli {
		log.Debug("--cli is the default for this build")
	}
	if *rtl {
		log.Warn("--rtl accepted but the layout engine has no bidi support yet")
	}

	if !*exitAtLoad {
		printTabs(win)
	}

	if err := persist(dirs, win, jar); err != nil {
		log.Error("failed to persist profile state", "error", err)
	}

	select {
	case <-ctx.Done():
	default:
	}
	return 0
}

// runFixtures drives internal/testserver's bundled regression fixtures
// and reports pass/fail the way --test/--testall/--wtest exit codes
// require: 0 only if every driven scenario passed.
func runFixtures(names []string) int {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	results := testserver.Run(ctx, names)
	ok := true
	for _, r := range results {
		switch {
		case r.Err != nil:
			fmt.Printf("FAIL  %-14s %v\n", r.Name, r.Err)
			ok = false
		case r.Note != "":
			fmt.Printf("SKIP  %-14s %s\n", r.Name, r.Note)
		case r.Passed:
			fmt.Printf("PASS  %-14s\n", r.Name)
		default:
			fmt.Printf("FAIL  %-14s title=%q\n", r.Name, r.Title)
			ok = false
		}
	}
	if !ok {
		return 1
	}
	return 0
}

func restoreState(win *navstate.Window, sf profile.StateFile) {
	for _, tj := range sf.Tabs {
		i := win.NewTab(tj.URL)
		win.SetTitle(i, tj.Title)
		win.SetScroll(i, tj.Scroll)
		win.SetSecure(i, tj.Secure)
	}
	if len(sf.Tabs) > 0 {
		win.SwitchTab(sf.ActiveTabIndex, false)
	}
}

func persist(dirs profile.Dirs, win *navstate.Window, jar *cookiejar.Jar) error {
	if err := dirs.SaveState(profile.ToJSON(win)); err != nil {
		return err
	}
	win.ClearDirty()

	hosts := map[string]bool{}
	for i := 0; i < win.TabCount(); i++ {
		if host := hostOf(win.Tab(i).URL); host != "" {
			hosts[host] = true
		}
	}
	var hostList []string
	for h := range hosts {
		hostList = append(hostList, h)
	}
	return dirs.SaveCookies(jar, hostList)
}

func hostOf(rawURL string) string {
	u, err := weburl.Parse(rawURL, nil)
	if err != nil {
		return ""
	}
	return u.Host
}

func printTabs(win *navstate.Window) {
	n := win.TabCount()
	for i := 0; i < n; i++ {
		t := win.Tab(i)
		fmt.Printf("[%d] %s — %s\n", i, t.Title, t.URL)
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintln(os.Stderr, "usage: tinybrowser [flags] [url ...]")
	fs.PrintDefaults()
}
