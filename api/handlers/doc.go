/*
Package handlers implements the request handlers of the diacritfix HTTP API.

# Overview

The handlers package carries the handler logic for every HTTP endpoint:
document submission, payment verification, one-shot download, the payment
gateway webhook, and health checks, plus the unified response and error
envelope. All handlers follow the standard net/http interface.

# Core types

  - ProcessHandler   — document submission, opens a checkout session
  - VerifyHandler    — confirms checkout sessions with the gateway
  - DownloadHandler  — serves a paid artifact exactly once
  - WebhookHandler   — signed gateway event delivery
  - HealthHandler    — service health checks (/health, /healthz, /ready)
  - Response         — unified JSON envelope (success + data + error + timestamp)
  - ErrorInfo        — structured error with code, message, retryable flag
  - ResponseWriter   — wraps http.ResponseWriter to capture the status code
  - HealthCheck      — pluggable readiness check interface

# Capabilities

  - Unified response format: WriteSuccess / WriteError / WriteJSON helpers
  - Request validation: DecodeJSONBody (strict mode), ValidateContentType
  - Automatic ErrorCode to HTTP status mapping (4xx/5xx)
  - Webhook signature verification with replay tolerance
  - Extensible health checks via RegisterCheck
*/
package handlers
