package handshake

// Role identifies which side of the handshake a Machine plays: Connect
// sets RoleClient, and a first Step in AcceptWait sets RoleServer. It is
// reported by Machine.Role; which message a side produces at each step
// follows from the state, not from Role.
type Role int

const (
	RoleClient Role = iota
	RoleServer
)
