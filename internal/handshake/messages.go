package handshake

import (
	"fmt"

	"secure-session/internal/container"
	sscrypto "secure-session/internal/crypto"
	"secure-session/internal/sserr"
)

// buildIdentityMessage composes the M1/M2 shape: an ID_TAG container
// carrying senderID, followed by the sender's ECDH public key container,
// followed by a raw (unframed) signature. M1 and M2 share this layout;
// only the signature's fragment coverage differs between them.
func buildIdentityMessage(senderID string, ecdhPub, sig []byte) []byte {
	payload := make([]byte, 0, headerEstimate(senderID, ecdhPub, sig))
	payload = append(payload, container.New(container.TagID, []byte(senderID)).Encode()...)
	payload = append(payload, ecdhContainerBytes(ecdhPub)...)
	payload = append(payload, sig...)
	return container.New(container.TagProto, payload).Encode()
}

func headerEstimate(id string, ecdhPub, sig []byte) int {
	return container.HeaderSize + len(id) + container.HeaderSize + len(ecdhPub) + len(sig)
}

// parseIdentityMessage reverses buildIdentityMessage, returning the
// sender's id, raw ECDH public key bytes, and the trailing signature.
func parseIdentityMessage(msg []byte) (senderID string, ecdhPub, sig []byte, err error) {
	outer, _, err := container.Parse(msg, container.TagProto)
	if err != nil {
		return "", nil, nil, err
	}
	idC, rest, err := container.Parse(outer.Payload, container.TagID)
	if err != nil {
		return "", nil, nil, err
	}
	ecdhC, rest, err := container.Parse(rest, container.TagECPub)
	if err != nil {
		return "", nil, nil, err
	}
	return string(idC.Payload), ecdhC.Payload, rest, nil
}

// buildM3 composes the client's M3: a raw signature followed by a raw
// fixed-width MAC, wrapped in the outer proto container.
func buildM3(sig, mac []byte) []byte {
	payload := make([]byte, 0, len(sig)+len(mac))
	payload = append(payload, sig...)
	payload = append(payload, mac...)
	return container.New(container.TagProto, payload).Encode()
}

// parseM3 splits an M3 payload into its signature and MAC, the MAC being
// the fixed-width suffix.
func parseM3(msg []byte) (sig, mac []byte, err error) {
	outer, _, err := container.Parse(msg, container.TagProto)
	if err != nil {
		return nil, nil, err
	}
	if len(outer.Payload) < sscrypto.MACSize {
		return nil, nil, fmt.Errorf("%w: M3 payload shorter than a MAC", sserr.ErrInvalidParameter)
	}
	split := len(outer.Payload) - sscrypto.MACSize
	return outer.Payload[:split], outer.Payload[split:], nil
}

// buildM4 wraps the server's MAC in the outer proto container.
func buildM4(mac []byte) []byte {
	return container.New(container.TagProto, mac).Encode()
}

// parseM4 extracts the MAC from an M4 payload.
func parseM4(msg []byte) (mac []byte, err error) {
	outer, _, err := container.Parse(msg, container.TagProto)
	if err != nil {
		return nil, err
	}
	if len(outer.Payload) != sscrypto.MACSize {
		return nil, fmt.Errorf("%w: M4 payload is not exactly one MAC", sserr.ErrInvalidParameter)
	}
	return outer.Payload, nil
}
