package commands

import (
	"context"
	"fmt"
	"net"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"secure-session/internal/app"
	sscrypto "secure-session/internal/crypto"
	"secure-session/internal/handshake"
	"secure-session/internal/session"
	"secure-session/internal/transport"
)

func newConnectCommand() *cobra.Command {
	var passphrase, serverID string
	cmd := &cobra.Command{
		Use:   "connect <addr>",
		Short: "Dial a listening peer and run the client side of the handshake",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := args[0]

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

			conn, err := net.Dial("tcp", addr)
			if err != nil {
				return fmt.Errorf("dial %s: %w", addr, err)
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

			if err := sess.Connect(ctx); err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			for sess.State() != handshake.Established {
				if _, err := sess.Receive(ctx); err != nil {
					return fmt.Errorf("handshake step: %w", err)
				}
			}
			if sess.PeerID() != serverID {
				return fmt.Errorf("connected to %q, expected %q", sess.PeerID(), serverID)
			}
			sid := sess.SessionID()
			fmt.Printf("established session with %q\nsession id: %s\n", sess.PeerID(), sscrypto.B64(sid[:]))

			return echoLoop(ctx, sess, w.Log)
		},
	}
	cmd.Flags().StringVar(&passphrase, "passphrase", "", "passphrase protecting the local identity keystore")
	cmd.Flags().StringVar(&serverID, "server-id", "", "expected id of the peer being connected to")
	cmd.MarkFlagRequired("passphrase")
	cmd.MarkFlagRequired("server-id")
	return cmd
}
