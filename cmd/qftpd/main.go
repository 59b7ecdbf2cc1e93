// Command qftpd runs a QFTP server: it serves one base directory to clients
// authenticated against a JSON user file.
package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/onestay/qftp"
)

var (
	app = kingpin.New("qftpd", "QFTP server")

	listenAddr = app.Flag("listen", "address to listen on").Default("0.0.0.0:4433").String()
	basePath   = app.Flag("base", "directory to serve").Required().String()
	authFile   = app.Flag("auth-file", "path to the JSON user file").Required().String()
	certFile   = app.Flag("cert", "TLS certificate file").Required().String()
	keyFile    = app.Flag("key", "TLS private key file").Required().String()
	verbose    = app.Flag("verbose", "enable debug logging").Short('v').Bool()
)

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	zapConfig := zap.NewProductionConfig()
	if *verbose {
		zapConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	zapLogger, err := zapConfig.Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, "qftpd: building logger:", err)
		os.Exit(1)
	}
	defer zapLogger.Sync()
	logger := zapLogger.Sugar()

	if err := run(logger); err != nil {
		logger.Fatalw("qftpd exited with an error", "error", err)
	}
}

func run(logger *zap.SugaredLogger) error {
	cert, err := tls.LoadX509KeyPair(*certFile, *keyFile)
	if err != nil {
		return fmt.Errorf("loading TLS certificate: %w", err)
	}

	server, err := qftp.NewServer(qftp.ServerConfig{
		ListenAddr: *listenAddr,
		ServerTLS: &tls.Config{
			Certificates: []tls.Certificate{cert},
			NextProtos:   []string{"qftp"},
		},
		AuthFilePath: *authFile,
		BasePath:     *basePath,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("starting server: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()
		server.Close()
	}()

	logger.Infow("qftpd listening", "addr", *listenAddr, "base", *basePath)

	for {
		client, err := server.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			logger.Warnw("accept failed", "error", err)
			continue
		}

		go func() {
			defer client.Shutdown()
			if err := client.Serve(ctx); err != nil {
				logger.Debugw("connection ended", "error", err)
			}
		}()
	}
}
