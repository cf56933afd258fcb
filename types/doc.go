/*
Package types provides the shared type contracts for the diacritfix service.

types is the lowest-level public package and depends on no other package in the
module. It defines the structured error taxonomy used by every component, the
checkout session types exchanged with the payment gateway, and the processed
document type produced by the document processor.

Error handling follows a code-based taxonomy:

  - input errors   — the caller's request is malformed or incomplete (4xx)
  - state errors   — the operation is invalid for the artifact's current
    lifecycle state, e.g. fetching an unpaid artifact (402/404)
  - upstream errors — the document processor or payment gateway failed or
    timed out (502/504, retryable)
  - invariant errors — conditions that indicate a bug, e.g. a duplicate
    artifact id (500, never retried)
*/
package types
