/*
Package adsmeta lists the NTFS alternate data streams (ADS) of files by running an
external inspection tool and parsing what it prints.

# Overview

Two tools are supported, each described by a Helper:

  - Streams (Sysinternals streams.exe) is run on one file at a time.
  - LADS (Heysoft lads.exe) is run on a directory and reports every file in it.

Neither tool has a machine-readable output format. Each output line is matched
against the helper's pattern; matching lines are projected into a Triple of
(file name, stream name, stream size) and everything else is dropped as noise.

# Pipeline

A query runs these stages, each pulling from the previous one:

	helper process -> lines -> triples -> sections -> []Stream

The line stage reads the helper's combined stdout and stderr one line per pull.
It never waits for the process to exit before the output is drained, so a
helper that prints more than a pipe buffer holds cannot deadlock the caller.

The section stage regroups triples by file. A helper prints a header naming a
file, followed by that file's stream lines, with no end marker: the next header
closes the current section. See GroupSections.

# Directory cache

Starting a helper costs far more than listing one more file, so an Inspector
with a per-directory helper runs it once per directory and keeps every file's
streams until a query arrives for a file in another directory:

	ins, err := adsmeta.New()
	if err != nil {
	    log.Fatalf("Failed to create inspector: %v", err)
	}
	defer ins.Close()

	streams, err := ins.Streams(`C:\Downloads\setup.exe`)  // runs lads.exe on C:\Downloads
	n, err := ins.Count(`C:\Downloads\readme.txt`)          // served from the cache

Only one directory is cached at a time. Flush forgets it. WithWatcher drops it
as soon as the directory changes on disk.

An Inspector is not safe for concurrent use.

# Digests

Digest computes a whole-file digest and caches it in a stream named after the
algorithm, as "<hex>@<unix millis>". A cached value older than the file's
modification time is ignored and recomputed.

# Error Handling

  - *ProcessStartError: the helper could not be started
  - *ReadError: reading helper output failed
  - *SizeParseError: a stream line carried an invalid size

A failed rebuild does not restore the previous directory's entries.
*/
package adsmeta
