// Package middleware groups the fiber middleware mounted by the start command.
//
//   - rayid: reuses or generates an X-Ray-ID per request and stores it in the locals.
//   - auth: rejects requests without the configured API key (X-API-Key or Bearer).
//
// rayid is mounted first so rejected requests are traced too. Swagger is served before auth.
package middleware
