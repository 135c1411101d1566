// Package jobqueue runs submitted jobs under a concurrency bound and reports
// each job's result as a tagged Outcome instead of an error. Queues are
// explicit values created once per workload (OCR recognition, membership
// reconciliation) and passed to the components that submit work.
package jobqueue
