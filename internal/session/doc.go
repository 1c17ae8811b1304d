// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

/*
Package session implements a view session: the unit that owns user-facing
state for one interactive client and mediates every backend call.

A Session holds the history store, the last analysis, generation and
recommendation results, and one loading flag per operation. Operations
follow the same sequence:

 1. Validate input locally. Invalid input is rejected with a
    *validation.RequestValidationError and a warning Notice; nothing is
    sent to the backend.
 2. Claim the operation's loading flag. A second submission while one is in
    flight returns ErrBusy without issuing a request.
 3. Call the backend with a context derived from both the caller's context
    and the session's own, tagged with a correlation id.
 4. On success, store the result and publish a success Notice. On failure,
    publish an error Notice carrying the backend message verbatim, or
    "<operation> failed" when there is none, and leave prior state intact.

Close cancels the session context. Requests still in flight are abandoned
and their completions are discarded with ErrClosed.

History operations delegate to history.Store and are not busy-guarded: the
store orders concurrent refreshes with sequence numbers instead.
*/
package session
