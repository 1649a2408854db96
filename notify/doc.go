// Package notify delivers verification codes.
//
// A [Notifier] hands one [Message] to a transport: [SMTPMailer] for real
// mail, [LogNotifier] for development. Subjects and bodies are rendered per
// language from the catalog in package locale. [Dispatcher] runs sends on a
// bounded worker pool and reports each outcome back to the waiting caller.
package notify
