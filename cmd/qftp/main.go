// Command qftp is the QFTP client: it lists and downloads files from a
// qftpd server.
package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/onestay/qftp"
)

var (
	app = kingpin.New("qftp", "QFTP client")

	addr       = app.Flag("addr", "server address, host:port").Required().String()
	serverName = app.Flag("server-name", "TLS server name to verify").Required().String()
	insecure   = app.Flag("insecure", "skip TLS certificate verification").Bool()
	user       = app.Flag("user", "login name").Required().String()
	password   = app.Flag("password", "login password").Required().String()

	listCmd  = app.Command("list", "list files under a path")
	listPath = listCmd.Arg("path", "path relative to the server's base directory").Default("").String()

	getCmd     = app.Command("get", "download files under a path")
	getPath    = getCmd.Arg("path", "path relative to the server's base directory").Default("").String()
	getOut     = getCmd.Flag("out", "local directory to write downloaded files into").Required().String()
	getStreams = getCmd.Flag("streams", "number of parallel response streams").Default("1").Uint16()
)

func main() {
	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))

	logger := zap.NewNop().Sugar()
	ctx := context.Background()

	client, err := qftp.Dial(ctx, qftp.ClientConfig{
		Addr:       *addr,
		ServerName: *serverName,
		TLSConfig:  &tls.Config{InsecureSkipVerify: *insecure},
		Logger:     logger,
	}, *user, *password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "qftp: connecting:", err)
		os.Exit(1)
	}
	defer client.Close()

	switch cmd {
	case listCmd.FullCommand():
		err = runList(ctx, client, *listPath)
	case getCmd.FullCommand():
		err = runGet(ctx, client, *getPath, *getStreams, *getOut)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "qftp:", err)
		os.Exit(1)
	}
}

func runList(ctx context.Context, client *qftp.Client, path string) error {
	files, err := client.ListFiles(ctx, path)
	if err != nil {
		return fmt.Errorf("listing files: %w", err)
	}
	for _, f := range files {
		fmt.Printf("%10d  %s\n", f.Size, f.Name)
	}
	return nil
}

func runGet(ctx context.Context, client *qftp.Client, path string, streams uint16, out string) error {
	chunks, err := client.GetFiles(ctx, path, streams)
	if err != nil {
		return fmt.Errorf("downloading files: %w", err)
	}

	for _, c := range chunks {
		dest := filepath.Join(out, filepath.FromSlash(c.Name))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", c.Name, err)
		}
		if err := os.WriteFile(dest, c.Data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", c.Name, err)
		}
	}
	fmt.Printf("downloaded %d file(s) to %s\n", len(chunks), out)
	return nil
}
