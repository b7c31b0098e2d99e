package commands

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"secure-session/internal/app"
	sscrypto "secure-session/internal/crypto"
	"secure-session/internal/handshake"
	"secure-session/internal/session"
	"secure-session/internal/transport"
)

func newListenCommand() *cobra.Command {
	var passphrase string
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Accept one incoming connection and run the server side of the handshake",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := app.NewWire(cfg)
			if err != nil {
				return err
			}
			defer w.Log.Sync()
			if w.Directory == nil {
				return fmt.Errorf("no peer directory at %s; register peers with 'directory add' first", w.Config.DirectoryPath())
			}

			id, priv, err := w.Identity.Load(passphrase)
			if err != nil {
				return err
			}

			ln, err := net.Listen("tcp", w.Config.ListenAddr)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", w.Config.ListenAddr, err)
			}
			defer ln.Close()
			w.Log.Info("listening", zap.String("addr", w.Config.ListenAddr), zap.String("id", id))

			conn, err := ln.Accept()
			if err != nil {
				return fmt.Errorf("accept: %w", err)
			}
			defer conn.Close()

			tc := transport.NewConn(conn, w.Log)
			ctx := context.Background()
			sess, err := session.New(id, priv, session.Callbacks{
				SendData:          tc.SendData,
				ReceiveData:       tc.ReceiveData,
				GetPublicKeyForID: w.Directory.GetPublicKeyForID,
				StateChanged: func(_ context.Context, event session.Event) {
					w.Log.Info("session state changed", zap.Stringer("event", event))
				},
			})
			if err != nil {
				return err
			}
			defer sess.Close()

			for sess.State() != handshake.Established {
				if _, err := sess.Receive(ctx); err != nil {
					return fmt.Errorf("handshake step: %w", err)
				}
			}
			sid := sess.SessionID()
			fmt.Printf("established session with %q\nsession id: %s\n", sess.PeerID(), sscrypto.B64(sid[:]))

			return echoLoop(ctx, sess, w.Log)
		},
	}
	cmd.Flags().StringVar(&passphrase, "passphrase", "", "passphrase protecting the local identity keystore")
	cmd.MarkFlagRequired("passphrase")
	return cmd
}

// echoLoop prints inbound application messages and sends stdin lines
// until either side closes the connection.
func echoLoop(ctx context.Context, sess *session.Context, log *zap.Logger) error {
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if err := sess.Send(ctx, scanner.Bytes()); err != nil {
				log.Warn("send failed", zap.Error(err))
				return
			}
		}
	}()
	for {
		msg, err := sess.Receive(ctx)
		if err != nil {
			return fmt.Errorf("receive: %w", err)
		}
		if msg != nil {
			fmt.Printf("peer> %s\n", msg)
		}
	}
}
