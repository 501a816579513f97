// Command backlightctl queries the status service of a running backlightd.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	grpcAdapter "github.com/quentinrf/backlightd/internal/adapters/grpc"
	"github.com/quentinrf/backlightd/pkg/tlsconfig"
)

const callTimeout = 5 * time.Second

func main() {
	var (
		addr    = flag.String("addr", "localhost:50051", "status service address (host:STATUS_PORT)")
		command = flag.String("cmd", "status", "what to query: status or history")
		since   = flag.Duration("since", 24*time.Hour, "history window ending now")
		cert    = flag.String("cert", "", "client certificate (enables mTLS)")
		key     = flag.String("key", "", "client private key")
		ca      = flag.String("ca", "", "CA certificate")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	conn, err := dial(*addr, *cert, *key, *ca)
	if err != nil {
		log.Fatal().Err(err).Str("addr", *addr).Msg("failed to connect")
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	if err := run(ctx, grpcAdapter.NewStatusClient(conn), *command, *since, os.Stdout); err != nil {
		log.Fatal().Err(err).Str("cmd", *command).Msg("query failed")
	}
}

// dial connects to addr, with mTLS when a certificate is given
func dial(addr, cert, key, ca string) (*grpc.ClientConn, error) {
	creds := insecure.NewCredentials()
	if cert != "" {
		tlsCfg, err := tlsconfig.LoadClientTLS(cert, key, ca)
		if err != nil {
			return nil, fmt.Errorf("load TLS config: %w", err)
		}
		creds = credentials.NewTLS(tlsCfg)
	}

	return grpc.NewClient(addr, grpc.WithTransportCredentials(creds))
}

// run performs one query and writes the reply to w as JSON
func run(ctx context.Context, client *grpcAdapter.StatusClient, command string, since time.Duration, w io.Writer) error {
	var (
		reply *structpb.Struct
		err   error
	)
	switch command {
	case "status":
		reply, err = client.GetStatus(ctx)
	case "history":
		end := time.Now()
		reply, err = client.GetHistory(ctx, end.Add(-since), end)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
	if err != nil {
		return err
	}

	out, err := protojson.MarshalOptions{Multiline: true}.Marshal(reply)
	if err != nil {
		return fmt.Errorf("encode reply: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
