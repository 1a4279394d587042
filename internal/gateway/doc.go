// Package gateway implements the session boundary against an HTTP/JSON
// repository gateway.
//
// The gateway is the session collaborator the binaries talk to: it owns
// authentication, retries, and the actual repository protocol, and exposes
// the query and file surfaces the pipeline needs. Client implements both
// plm.Repository and plm.FileStore over that API.
//
// Example usage:
//
//	client := gateway.NewClient("https://plm-gateway.example.com", token, 60*time.Second)
//	session := plm.NewSession(client, client)
//
// The core pipeline never imports this package; it only sees the plm
// interfaces. Tests substitute doubles for the same interfaces.
package gateway
