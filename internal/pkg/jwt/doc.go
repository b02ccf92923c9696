// Package jwt is helpers for working with JSON Web Tokens (JWT).
//
// It includes:
//   - A typed Claims wrapper (registered claims + strongly-typed payload).
//   - A symmetric HS512 implementation scoped to one token type, so the OTP
//     challenge signer and the access signer are separate instances with
//     separate secrets.
//   - Context helpers for storing and retrieving authenticated claims.
package jwt
