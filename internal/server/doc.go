/*
Package server provides HTTP listener lifecycle management: non-blocking
startup, graceful shutdown, and system signal handling.

# Overview

The package wraps net/http.Server in a named Manager that unifies listening,
serving, shutdown, and error propagation. The service runs two managers: the
api listener carrying the artifact lifecycle routes and the metrics listener
carrying Prometheus scrapes. Zero-valued config fields are normalized to
service defaults, and ":0" addresses resolve to the bound port once started.

# Core types

  - Manager: holds the http.Server, net.Listener, and an asynchronous error
    channel, and exposes the Start/Shutdown/WaitForShutdown lifecycle methods.
  - Config: listen address, read/write timeouts, idle timeout, maximum
    header size, and graceful shutdown timeout.

# Capabilities

  - Non-blocking startup: Start serves from a background goroutine.
  - Graceful shutdown: Shutdown drains requests within the configured timeout.
  - Signal handling: WaitForShutdown reacts to SIGINT/SIGTERM.
  - Error propagation: Errors() exposes asynchronous serve failures.
  - State queries: IsRunning/Name/Addr report run state and the live address.
*/
package server
