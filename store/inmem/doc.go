// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package inmem implements the store.Blobs interface. This implementation is meant
to help get an instance of folio up and running quickly without a need to setup
a dedicated blob store. Since the current implementation keeps everything in
process memory, it is recommended for test environments only.
*/
package inmem
