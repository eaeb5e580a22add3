// Package auth provides the credential and token lifecycle for a
// multi-role web backend: bcrypt password hashing, stateless JWT
// issuance and validation, account resolution for local and OAuth2
// logins, request authentication middleware, and route-level access
// policy.
//
// Roles:
//   - Accounts carry a single global UserRole (reader, writer, admin)
//     in a strict hierarchy. Reader and writer are self-assignable at
//     registration; admin accounts are only created through an explicit
//     elevation path.
//
// Tokens:
//   - TokenService signs HS256 JWTs whose subject is the username and
//     whose role claim is a snapshot at issuance. Request
//     authentication re-reads the account so authorization always sees
//     the store's current role, and a token whose subject no longer
//     exists is treated as invalid.
//
// Request flow:
//   - RouteAuthenticator.Authenticate attaches a Principal when a valid
//     token arrives and lets every request continue otherwise.
//     RoutePolicy evaluates the request path against a static prefix
//     table and denies with Unauthenticated or InsufficientRole. Both
//     pieces are pure per-request functions with no shared mutable
//     state beyond the account store.
package auth
