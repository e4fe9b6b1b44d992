// Package catalog provides named dictionaries for Ask Ouija.
//
// The catalog package handles:
//   - Registering dictionaries loaded at startup (the --dict file)
//   - Discovering <name>.txt files in a dictionary directory
//   - Caching loaded dictionaries so every board shares one copy
//   - Tracking the default dictionary
//
// Dictionary Files:
//
// One candidate word per line. Lines that are not made only of ASCII letters,
// and single letters other than "a", are dropped by the loader; see
// dictionary.Parse.
//
// Usage:
//
//	manager, err := catalog.NewManager("dictionaries")
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager.LoadFile("english", "/usr/share/dict/words")
//
//	dict, err := manager.Get("")        // default
//	dict, err = manager.Get("animals")  // dictionaries/animals.txt
//	infos, err := manager.List()
package catalog
